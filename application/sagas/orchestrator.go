package sagas

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"library-gateway/application/retry"
	"library-gateway/domain"
)

// ReservationService is the slice of the Reservation service contract the
// orchestrator needs.
type ReservationService interface {
	GetReservations(ctx context.Context, username string) ([]domain.Reservation, error)
	CountActive(ctx context.Context, username string) (int, error)
	CreateReservation(ctx context.Context, username, bookUID, libraryUID, tillDate string) (domain.Reservation, error)
	CloseReservation(ctx context.Context, username, reservationUID string, condition domain.BookCondition, date string) (domain.Reservation, error)
	CancelReservation(ctx context.Context, reservationUID string) error
}

// LibraryService is the slice of the Library service contract the
// orchestrator needs.
type LibraryService interface {
	GetBook(ctx context.Context, bookUID string) (domain.Book, error)
	GetLibrary(ctx context.Context, libraryUID string) (domain.Library, error)
	GetBookCondition(ctx context.Context, bookUID string) (domain.Book, error)
	ChangeCondition(ctx context.Context, bookUID string, condition domain.BookCondition) error
	ChangeCount(ctx context.Context, bookUID, libraryUID string, delta int) error
}

// RatingService is the slice of the Rating service contract the
// orchestrator needs.
type RatingService interface {
	GetRating(ctx context.Context, username string) (domain.Rating, error)
	ChangeRating(ctx context.Context, username string, delta int) error
}

// DeferredQueue accepts side effects that failed at request time and must
// eventually converge.
type DeferredQueue interface {
	Enqueue(op retry.Operation, timeout time.Duration) uuid.UUID
}

// Metrics receives saga outcomes. NopMetrics is used when metrics are
// disabled.
type Metrics interface {
	SagaCompleted(saga string)
	SagaCompensated(saga string)
}

// NopMetrics discards all saga events
type NopMetrics struct{}

func (NopMetrics) SagaCompleted(string)   {}
func (NopMetrics) SagaCompensated(string) {}

// Orchestrator coordinates the borrow and return workflows across the
// Reservation, Library and Rating services.
type Orchestrator struct {
	reservations ReservationService
	library      LibraryService
	rating       RatingService
	queue        DeferredQueue
	logger       *zap.Logger
	metrics      Metrics
}

// NewOrchestrator creates the workflow orchestrator
func NewOrchestrator(
	reservations ReservationService,
	library LibraryService,
	rating RatingService,
	queue DeferredQueue,
	logger *zap.Logger,
	metrics Metrics,
) *Orchestrator {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Orchestrator{
		reservations: reservations,
		library:      library,
		rating:       rating,
		queue:        queue,
		logger:       logger,
		metrics:      metrics,
	}
}

// ReservationDetails is a reservation enriched with book and library
// display info for gateway responses.
type ReservationDetails struct {
	ReservationUID string                   `json:"reservationUid"`
	Status         domain.ReservationStatus `json:"status"`
	StartDate      string                   `json:"startDate"`
	TillDate       string                   `json:"tillDate"`
	Book           domain.Book              `json:"book"`
	Library        domain.Library           `json:"library"`
}

// ListReservations returns the user's reservations enriched with book and
// library info.
func (o *Orchestrator) ListReservations(ctx context.Context, username string) ([]ReservationDetails, error) {
	reservations, err := o.reservations.GetReservations(ctx, username)
	if err != nil {
		return nil, err
	}

	details := make([]ReservationDetails, 0, len(reservations))
	for _, r := range reservations {
		book, err := o.library.GetBook(ctx, r.BookUID)
		if err != nil {
			return nil, err
		}
		library, err := o.library.GetLibrary(ctx, r.LibraryUID)
		if err != nil {
			return nil, err
		}
		details = append(details, ReservationDetails{
			ReservationUID: r.ReservationUID,
			Status:         r.Status,
			StartDate:      r.StartDate,
			TillDate:       r.TillDate,
			Book:           book,
			Library:        library,
		})
	}
	return details, nil
}
