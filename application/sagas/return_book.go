package sagas

import (
	"context"

	"go.uber.org/zap"

	"library-gateway/application/retry"
	"library-gateway/domain"
)

// ReturnBookInput is the return request
type ReturnBookInput struct {
	Username       string
	ReservationUID string
	Condition      domain.BookCondition
	ReturnDate     string
}

// returnBookContext aggregates the intermediate results of one return
// workflow.
type returnBookContext struct {
	reservation domain.Reservation
	outcome     domain.ReturnOutcome
	deltaRating int
}

// ReturnBook runs the return workflow. Closing the reservation is the
// authoritative, client-visible outcome: if it fails the whole request
// fails. Everything after it (condition update, available-count increase,
// rating adjustment) is best effort: a direct attempt is made, and on
// failure the corresponding operation is queued for retry instead of
// failing the request. The caller always gets success once the reservation
// is closed.
func (o *Orchestrator) ReturnBook(ctx context.Context, input ReturnBookInput) error {
	reservation, err := o.reservations.CloseReservation(
		ctx, input.Username, input.ReservationUID, input.Condition, input.ReturnDate)
	if err != nil {
		return err
	}

	wf := &returnBookContext{reservation: reservation}
	o.logger.Info("reservation closed",
		zap.String("reservation_uid", reservation.ReservationUID),
		zap.String("status", string(reservation.Status)),
		zap.String("username", input.Username),
	)

	o.settleReturn(ctx, input, wf)
	o.metrics.SagaCompleted("return_book")
	return nil
}

// settleReturn propagates the side effects of a closed reservation:
// condition update, available count, rating delta. Never returns an error;
// failed effects are queued.
func (o *Orchestrator) settleReturn(ctx context.Context, input ReturnBookInput, wf *returnBookContext) {
	bookUID := wf.reservation.BookUID
	libraryUID := wf.reservation.LibraryUID

	recorded, err := o.library.GetBookCondition(ctx, bookUID)
	if err != nil {
		// Without the recorded condition the comparison half of the delta
		// cannot be computed. Propagate the count increase and the
		// status-derived delta through the queue and log the skip.
		o.logger.Warn("recorded condition unavailable, queueing return side effects",
			zap.String("book_uid", bookUID),
			zap.Error(err),
		)
		o.queue.Enqueue(retry.IncreaseCount{BookUID: bookUID, LibraryUID: libraryUID, Delta: 1}, 0)
		if wf.reservation.Status == domain.StatusExpired {
			o.queue.Enqueue(retry.AdjustRating{Username: input.Username, Delta: -10}, 0)
		}
		return
	}

	wf.outcome = domain.ReturnOutcome{
		Status:            wf.reservation.Status,
		ReturnedCondition: input.Condition,
		RecordedCondition: recorded.Condition,
	}
	wf.deltaRating = wf.outcome.RatingDelta()

	if wf.outcome.ConditionWorsened() {
		if err := o.library.ChangeCondition(ctx, bookUID, input.Condition); err != nil {
			o.queue.Enqueue(retry.ChangeCondition{BookUID: bookUID, Condition: input.Condition}, 0)
		}
	}

	if err := o.library.ChangeCount(ctx, bookUID, libraryUID, 1); err != nil {
		o.queue.Enqueue(retry.IncreaseCount{BookUID: bookUID, LibraryUID: libraryUID, Delta: 1}, 0)
	}

	if wf.deltaRating != 0 {
		if err := o.rating.ChangeRating(ctx, input.Username, wf.deltaRating); err != nil {
			o.queue.Enqueue(retry.AdjustRating{Username: input.Username, Delta: wf.deltaRating}, 0)
		}
	}

	o.logger.Info("return settled",
		zap.String("reservation_uid", wf.reservation.ReservationUID),
		zap.Int("delta_rating", wf.deltaRating),
		zap.Bool("condition_worsened", wf.outcome.ConditionWorsened()),
	)
}
