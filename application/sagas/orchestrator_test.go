package sagas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"library-gateway/application/retry"
	"library-gateway/domain"
	apperrors "library-gateway/pkg/errors"
)

// fakeReservations scripts the Reservation service
type fakeReservations struct {
	reservations []domain.Reservation
	listErr      error

	created   []domain.Reservation
	createErr error

	closed   domain.Reservation
	closeErr error

	cancelled []string
	cancelErr error
}

func (f *fakeReservations) GetReservations(ctx context.Context, username string) ([]domain.Reservation, error) {
	return f.reservations, f.listErr
}

func (f *fakeReservations) CountActive(ctx context.Context, username string) (int, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	count := 0
	for _, r := range f.reservations {
		if r.Status == domain.StatusRented {
			count++
		}
	}
	return count, nil
}

func (f *fakeReservations) CreateReservation(ctx context.Context, username, bookUID, libraryUID, tillDate string) (domain.Reservation, error) {
	if f.createErr != nil {
		return domain.Reservation{}, f.createErr
	}
	reservation := domain.Reservation{
		ReservationUID: uuid.New().String(),
		BookUID:        bookUID,
		LibraryUID:     libraryUID,
		Username:       username,
		Status:         domain.StatusRented,
		StartDate:      "2024-10-01",
		TillDate:       tillDate,
	}
	f.created = append(f.created, reservation)
	return reservation, nil
}

func (f *fakeReservations) CloseReservation(ctx context.Context, username, reservationUID string, condition domain.BookCondition, date string) (domain.Reservation, error) {
	if f.closeErr != nil {
		return domain.Reservation{}, f.closeErr
	}
	return f.closed, nil
}

func (f *fakeReservations) CancelReservation(ctx context.Context, reservationUID string) error {
	f.cancelled = append(f.cancelled, reservationUID)
	return f.cancelErr
}

// fakeLibrary scripts the Library service
type fakeLibrary struct {
	book    domain.Book
	library domain.Library

	bookErr         error
	libraryErr      error
	conditionErr    error
	changeCondErr   error
	changeCountErr  error
	conditionCalls  []domain.BookCondition
	countDeltas     []int
	countBookUIDs   []string
	countLibraryIDs []string
}

func (f *fakeLibrary) GetBook(ctx context.Context, bookUID string) (domain.Book, error) {
	return f.book, f.bookErr
}

func (f *fakeLibrary) GetLibrary(ctx context.Context, libraryUID string) (domain.Library, error) {
	return f.library, f.libraryErr
}

func (f *fakeLibrary) GetBookCondition(ctx context.Context, bookUID string) (domain.Book, error) {
	if f.conditionErr != nil {
		return domain.Book{}, f.conditionErr
	}
	return f.book, nil
}

func (f *fakeLibrary) ChangeCondition(ctx context.Context, bookUID string, condition domain.BookCondition) error {
	if f.changeCondErr != nil {
		return f.changeCondErr
	}
	f.conditionCalls = append(f.conditionCalls, condition)
	return nil
}

func (f *fakeLibrary) ChangeCount(ctx context.Context, bookUID, libraryUID string, delta int) error {
	if f.changeCountErr != nil {
		return f.changeCountErr
	}
	f.countDeltas = append(f.countDeltas, delta)
	f.countBookUIDs = append(f.countBookUIDs, bookUID)
	f.countLibraryIDs = append(f.countLibraryIDs, libraryUID)
	return nil
}

// fakeRating scripts the Rating service
type fakeRating struct {
	stars     int
	getErr    error
	changeErr error
	deltas    []int
}

func (f *fakeRating) GetRating(ctx context.Context, username string) (domain.Rating, error) {
	return domain.Rating{Stars: f.stars}, f.getErr
}

func (f *fakeRating) ChangeRating(ctx context.Context, username string, delta int) error {
	if f.changeErr != nil {
		return f.changeErr
	}
	f.deltas = append(f.deltas, delta)
	return nil
}

// fakeQueue records enqueued operations
type fakeQueue struct {
	ops []retry.Operation
}

func (f *fakeQueue) Enqueue(op retry.Operation, timeout time.Duration) uuid.UUID {
	f.ops = append(f.ops, op)
	return uuid.New()
}

type testEnv struct {
	reservations *fakeReservations
	library      *fakeLibrary
	rating       *fakeRating
	queue        *fakeQueue
	orchestrator *Orchestrator
}

func newTestEnv() *testEnv {
	env := &testEnv{
		reservations: &fakeReservations{},
		library: &fakeLibrary{
			book:    domain.Book{BookUID: "book-1", Name: "The Go Programming Language", Condition: domain.ConditionGood},
			library: domain.Library{LibraryUID: "lib-1", Name: "Central", City: "Moscow"},
		},
		rating: &fakeRating{stars: 10},
		queue:  &fakeQueue{},
	}
	env.orchestrator = NewOrchestrator(
		env.reservations, env.library, env.rating, env.queue, zap.NewNop(), nil)
	return env
}

func TestListReservations_EnrichesWithBookAndLibrary(t *testing.T) {
	env := newTestEnv()
	env.reservations.reservations = []domain.Reservation{
		{
			ReservationUID: "res-1",
			BookUID:        "book-1",
			LibraryUID:     "lib-1",
			Status:         domain.StatusRented,
			StartDate:      "2024-09-01",
			TillDate:       "2024-10-01",
		},
	}

	details, err := env.orchestrator.ListReservations(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "res-1", details[0].ReservationUID)
	assert.Equal(t, "The Go Programming Language", details[0].Book.Name)
	assert.Equal(t, "Central", details[0].Library.Name)
}

func TestListReservations_PropagatesDownstreamFailure(t *testing.T) {
	env := newTestEnv()
	env.reservations.reservations = []domain.Reservation{{BookUID: "book-1", LibraryUID: "lib-1"}}
	env.library.bookErr = apperrors.NewExternalError("library", errors.New("boom"))

	_, err := env.orchestrator.ListReservations(context.Background(), "alice")
	assert.True(t, apperrors.IsDownstream(err))
}
