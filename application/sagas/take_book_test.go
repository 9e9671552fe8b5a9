package sagas

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-gateway/domain"
	apperrors "library-gateway/pkg/errors"
)

func takeInput() TakeBookInput {
	return TakeBookInput{
		Username:   "alice",
		BookUID:    "book-1",
		LibraryUID: "lib-1",
		TillDate:   "2024-11-01",
	}
}

func TestTakeBook_Succeeds(t *testing.T) {
	env := newTestEnv()
	env.rating.stars = 5

	result, err := env.orchestrator.TakeBook(context.Background(), takeInput())
	require.NoError(t, err)

	require.Len(t, env.reservations.created, 1)
	assert.Equal(t, env.reservations.created[0].ReservationUID, result.ReservationUID)
	assert.Equal(t, domain.StatusRented, result.Status)
	assert.Equal(t, "2024-11-01", result.TillDate)
	assert.Equal(t, 5, result.Rating.Stars)
	assert.Equal(t, "The Go Programming Language", result.Book.Name)

	// Exactly one decrement at the target library.
	assert.Equal(t, []int{-1}, env.library.countDeltas)
	assert.Equal(t, []string{"book-1"}, env.library.countBookUIDs)
	assert.Equal(t, []string{"lib-1"}, env.library.countLibraryIDs)
	assert.Empty(t, env.reservations.cancelled)
}

func TestTakeBook_RejectsWhenStarsAtActiveCount(t *testing.T) {
	env := newTestEnv()
	env.rating.stars = 3
	env.reservations.reservations = []domain.Reservation{
		{Status: domain.StatusRented},
		{Status: domain.StatusRented},
		{Status: domain.StatusRented},
		{Status: domain.StatusReturned}, // closed reservations do not count
	}

	_, err := env.orchestrator.TakeBook(context.Background(), takeInput())
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))

	// The rule fires before any mutation, so nothing to compensate.
	assert.Empty(t, env.reservations.created)
	assert.Empty(t, env.library.countDeltas)
	assert.Empty(t, env.reservations.cancelled)
}

func TestTakeBook_RejectsWhenStarsBelowActiveCount(t *testing.T) {
	env := newTestEnv()
	env.rating.stars = 1
	env.reservations.reservations = []domain.Reservation{
		{Status: domain.StatusRented},
		{Status: domain.StatusRented},
	}

	_, err := env.orchestrator.TakeBook(context.Background(), takeInput())
	assert.True(t, apperrors.IsForbidden(err))
	assert.Empty(t, env.reservations.created)
}

func TestTakeBook_FailsWhenReservationCountUnavailable(t *testing.T) {
	env := newTestEnv()
	env.reservations.listErr = apperrors.NewCircuitOpenError("reservation")

	_, err := env.orchestrator.TakeBook(context.Background(), takeInput())
	require.Error(t, err)
	assert.True(t, apperrors.IsDownstream(err))
	assert.Empty(t, env.reservations.created)
}

func TestTakeBook_FailsWhenRatingUnavailable(t *testing.T) {
	env := newTestEnv()
	env.rating.getErr = apperrors.NewExternalError("rating", errors.New("boom"))

	_, err := env.orchestrator.TakeBook(context.Background(), takeInput())
	require.Error(t, err)
	assert.True(t, apperrors.IsDownstream(err))
	assert.Empty(t, env.reservations.created)
}

func TestTakeBook_CompensatesWhenDecrementFails(t *testing.T) {
	env := newTestEnv()
	env.library.changeCountErr = apperrors.NewExternalError("library", errors.New("boom"))

	_, err := env.orchestrator.TakeBook(context.Background(), takeInput())
	require.Error(t, err)
	assert.True(t, apperrors.IsDownstream(err))

	// The reservation created in step 4 must be cancelled before the
	// error reaches the caller.
	require.Len(t, env.reservations.created, 1)
	require.Len(t, env.reservations.cancelled, 1)
	assert.Equal(t, env.reservations.created[0].ReservationUID, env.reservations.cancelled[0])
}

func TestTakeBook_CompensatesWhenDisplayInfoFails(t *testing.T) {
	env := newTestEnv()
	env.library.libraryErr = apperrors.NewExternalError("library", errors.New("boom"))

	_, err := env.orchestrator.TakeBook(context.Background(), takeInput())
	require.Error(t, err)

	require.Len(t, env.reservations.created, 1)
	require.Len(t, env.reservations.cancelled, 1)
	assert.Equal(t, env.reservations.created[0].ReservationUID, env.reservations.cancelled[0])
}

func TestTakeBook_ErrorSurvivesFailedCompensation(t *testing.T) {
	env := newTestEnv()
	env.library.changeCountErr = apperrors.NewExternalError("library", errors.New("boom"))
	env.reservations.cancelErr = errors.New("cancel failed too")

	_, err := env.orchestrator.TakeBook(context.Background(), takeInput())
	require.Error(t, err)

	// The original step failure, not the compensation failure, reaches
	// the caller.
	assert.True(t, apperrors.IsDownstream(err))
	require.Len(t, env.reservations.cancelled, 1)
}
