package sagas

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-gateway/application/retry"
	"library-gateway/domain"
	apperrors "library-gateway/pkg/errors"
)

func returnInput(condition domain.BookCondition) ReturnBookInput {
	return ReturnBookInput{
		Username:       "alice",
		ReservationUID: "res-1",
		Condition:      condition,
		ReturnDate:     "2024-10-15",
	}
}

func closedReservation(status domain.ReservationStatus) domain.Reservation {
	return domain.Reservation{
		ReservationUID: "res-1",
		BookUID:        "book-1",
		LibraryUID:     "lib-1",
		Username:       "alice",
		Status:         status,
		StartDate:      "2024-09-01",
		TillDate:       "2024-10-20",
	}
}

func TestReturnBook_FailsWhenCloseFails(t *testing.T) {
	env := newTestEnv()
	env.reservations.closeErr = apperrors.NewExternalError("reservation", errors.New("boom"))

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionGood))
	require.Error(t, err)
	assert.True(t, apperrors.IsDownstream(err))

	// Nothing may be queued when the authoritative step failed.
	assert.Empty(t, env.queue.ops)
	assert.Empty(t, env.library.countDeltas)
}

func TestReturnBook_OnTimeSameCondition(t *testing.T) {
	env := newTestEnv()
	env.reservations.closed = closedReservation(domain.StatusReturned)
	env.library.book.Condition = domain.ConditionGood

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionGood))
	require.NoError(t, err)

	assert.Equal(t, []int{1}, env.library.countDeltas)
	assert.Equal(t, []int{1}, env.rating.deltas)
	// Condition matches the record, so no condition update is issued.
	assert.Empty(t, env.library.conditionCalls)
	assert.Empty(t, env.queue.ops)
}

func TestReturnBook_ExpiredSameCondition(t *testing.T) {
	env := newTestEnv()
	env.reservations.closed = closedReservation(domain.StatusExpired)
	env.library.book.Condition = domain.ConditionGood

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionGood))
	require.NoError(t, err)

	assert.Equal(t, []int{-10}, env.rating.deltas)
	assert.Empty(t, env.library.conditionCalls)
}

func TestReturnBook_OnTimeWorsenedCondition(t *testing.T) {
	env := newTestEnv()
	env.reservations.closed = closedReservation(domain.StatusReturned)
	env.library.book.Condition = domain.ConditionGood

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionBad))
	require.NoError(t, err)

	assert.Equal(t, []int{-10}, env.rating.deltas)
	assert.Equal(t, []domain.BookCondition{domain.ConditionBad}, env.library.conditionCalls)
}

func TestReturnBook_ExpiredWorsenedConditionStacks(t *testing.T) {
	env := newTestEnv()
	env.reservations.closed = closedReservation(domain.StatusExpired)
	env.library.book.Condition = domain.ConditionExcellent

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionBad))
	require.NoError(t, err)

	assert.Equal(t, []int{-20}, env.rating.deltas)
	assert.Equal(t, []domain.BookCondition{domain.ConditionBad}, env.library.conditionCalls)
}

func TestReturnBook_SkipsRatingCallWhenDeltaZero(t *testing.T) {
	env := newTestEnv()
	// A close that reports neither RETURNED nor EXPIRED nets a zero delta.
	env.reservations.closed = closedReservation(domain.StatusRented)
	env.library.book.Condition = domain.ConditionGood

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionGood))
	require.NoError(t, err)

	assert.Empty(t, env.rating.deltas)
	assert.Empty(t, env.queue.ops)
}

func TestReturnBook_QueuesCountIncreaseOnDirectFailure(t *testing.T) {
	env := newTestEnv()
	env.reservations.closed = closedReservation(domain.StatusReturned)
	env.library.book.Condition = domain.ConditionGood
	env.library.changeCountErr = apperrors.NewExternalError("library", errors.New("boom"))

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionGood))
	require.NoError(t, err, "the return must succeed even when the count update fails")

	require.Len(t, env.queue.ops, 1)
	op, ok := env.queue.ops[0].(retry.IncreaseCount)
	require.True(t, ok)
	assert.Equal(t, "book-1", op.BookUID)
	assert.Equal(t, "lib-1", op.LibraryUID)
	assert.Equal(t, 1, op.Delta)
}

func TestReturnBook_QueuesRatingAdjustmentOnDirectFailure(t *testing.T) {
	env := newTestEnv()
	env.reservations.closed = closedReservation(domain.StatusExpired)
	env.library.book.Condition = domain.ConditionGood
	env.rating.changeErr = apperrors.NewExternalError("rating", errors.New("boom"))

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionGood))
	require.NoError(t, err)

	require.Len(t, env.queue.ops, 1)
	op, ok := env.queue.ops[0].(retry.AdjustRating)
	require.True(t, ok)
	assert.Equal(t, "alice", op.Username)
	assert.Equal(t, -10, op.Delta)
}

func TestReturnBook_QueuesConditionChangeOnDirectFailure(t *testing.T) {
	env := newTestEnv()
	env.reservations.closed = closedReservation(domain.StatusReturned)
	env.library.book.Condition = domain.ConditionGood
	env.library.changeCondErr = apperrors.NewExternalError("library", errors.New("boom"))

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionBad))
	require.NoError(t, err)

	require.Len(t, env.queue.ops, 1)
	op, ok := env.queue.ops[0].(retry.ChangeCondition)
	require.True(t, ok)
	assert.Equal(t, "book-1", op.BookUID)
	assert.Equal(t, domain.ConditionBad, op.Condition)

	// The rating delta still went through directly.
	assert.Equal(t, []int{-10}, env.rating.deltas)
}

func TestReturnBook_QueuesTailWhenConditionFetchFails(t *testing.T) {
	env := newTestEnv()
	env.reservations.closed = closedReservation(domain.StatusExpired)
	env.library.conditionErr = apperrors.NewExternalError("library", errors.New("boom"))

	err := env.orchestrator.ReturnBook(context.Background(), returnInput(domain.ConditionGood))
	require.NoError(t, err)

	require.Len(t, env.queue.ops, 2)
	count, ok := env.queue.ops[0].(retry.IncreaseCount)
	require.True(t, ok)
	assert.Equal(t, 1, count.Delta)

	adjust, ok := env.queue.ops[1].(retry.AdjustRating)
	require.True(t, ok)
	assert.Equal(t, -10, adjust.Delta)

	// No direct calls happened past the failed fetch.
	assert.Empty(t, env.library.countDeltas)
	assert.Empty(t, env.rating.deltas)
}
