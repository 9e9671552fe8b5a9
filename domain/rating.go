package domain

// ReturnOutcome captures the facts about a completed return that drive the
// user's rating adjustment.
type ReturnOutcome struct {
	Status            ReservationStatus
	ReturnedCondition BookCondition
	RecordedCondition BookCondition
}

// ConditionWorsened reports whether the book came back in a condition other
// than the one on record, which requires a condition update at the library.
func (o ReturnOutcome) ConditionWorsened() bool {
	return o.ReturnedCondition != o.RecordedCondition
}

// RatingDelta computes the rating adjustment for a return. The rules are
// additive, not mutually exclusive: an expired return in a worsened
// condition nets -20.
//
//	+1  returned on time in the recorded condition
//	-10 returned after the due date
//	-10 returned in a condition other than the recorded one
func (o ReturnOutcome) RatingDelta() int {
	delta := 0
	if o.Status == StatusReturned && !o.ConditionWorsened() {
		delta++
	}
	if o.Status == StatusExpired {
		delta -= 10
	}
	if o.ConditionWorsened() {
		delta -= 10
	}
	return delta
}
