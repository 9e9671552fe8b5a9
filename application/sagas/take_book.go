package sagas

import (
	"context"

	"go.uber.org/zap"

	"library-gateway/domain"
	apperrors "library-gateway/pkg/errors"
)

// TakeBookInput is the borrow request
type TakeBookInput struct {
	Username   string
	BookUID    string
	LibraryUID string
	TillDate   string
}

// TakeBookResult is the borrow response
type TakeBookResult struct {
	ReservationUID string                   `json:"reservationUid"`
	Status         domain.ReservationStatus `json:"status"`
	StartDate      string                   `json:"startDate"`
	TillDate       string                   `json:"tillDate"`
	Book           domain.Book              `json:"book"`
	Library        domain.Library           `json:"library"`
	Rating         domain.Rating            `json:"rating"`
}

// takeBookContext aggregates the intermediate results of one borrow
// workflow. It lives only for the duration of the call.
type takeBookContext struct {
	activeCount int
	rating      domain.Rating
	reservation domain.Reservation
	book        domain.Book
	library     domain.Library
}

// TakeBook runs the borrow workflow:
//
//  1. count the user's RENTED reservations
//  2. fetch the user's rating
//  3. reject when stars <= active count (no mutation has happened yet)
//  4. create the reservation, the first side effect
//  5. decrement the book's available count at the library
//  6. fetch book and library display info
//
// If a step after 4 fails, the created reservation is cancelled before the
// error is returned: a reservation must never be left RENTED without the
// matching count decrement. Retrying a failed TakeBook is not safe at this
// boundary; each attempt mints a new reservation.
func (o *Orchestrator) TakeBook(ctx context.Context, input TakeBookInput) (TakeBookResult, error) {
	wf := &takeBookContext{}

	saga := New("take_book", o.logger,
		Step{
			Name: "count active reservations",
			Execute: func(ctx context.Context) error {
				count, err := o.reservations.CountActive(ctx, input.Username)
				if err != nil {
					return err
				}
				wf.activeCount = count
				return nil
			},
		},
		Step{
			Name: "fetch rating",
			Execute: func(ctx context.Context) error {
				rating, err := o.rating.GetRating(ctx, input.Username)
				if err != nil {
					return err
				}
				wf.rating = rating
				return nil
			},
		},
		Step{
			Name: "check rented limit",
			Execute: func(ctx context.Context) error {
				if wf.rating.Stars <= wf.activeCount {
					return apperrors.NewForbiddenError("too many rented books")
				}
				return nil
			},
		},
		Step{
			Name: "create reservation",
			Execute: func(ctx context.Context) error {
				reservation, err := o.reservations.CreateReservation(
					ctx, input.Username, input.BookUID, input.LibraryUID, input.TillDate)
				if err != nil {
					return err
				}
				wf.reservation = reservation
				return nil
			},
			Compensate: func(ctx context.Context) error {
				o.logger.Warn("cancelling reservation after failed borrow step",
					zap.String("reservation_uid", wf.reservation.ReservationUID),
					zap.String("username", input.Username),
				)
				return o.reservations.CancelReservation(ctx, wf.reservation.ReservationUID)
			},
		},
		Step{
			Name: "decrement available count",
			Execute: func(ctx context.Context) error {
				return o.library.ChangeCount(ctx, input.BookUID, input.LibraryUID, -1)
			},
		},
		Step{
			Name: "fetch display info",
			Execute: func(ctx context.Context) error {
				book, err := o.library.GetBook(ctx, input.BookUID)
				if err != nil {
					return err
				}
				library, err := o.library.GetLibrary(ctx, input.LibraryUID)
				if err != nil {
					return err
				}
				wf.book = book
				wf.library = library
				return nil
			},
		},
	)

	if err := saga.Execute(ctx); err != nil {
		if saga.State() == StateCompensated {
			o.metrics.SagaCompensated("take_book")
		}
		return TakeBookResult{}, err
	}

	o.metrics.SagaCompleted("take_book")
	return TakeBookResult{
		ReservationUID: wf.reservation.ReservationUID,
		Status:         wf.reservation.Status,
		StartDate:      wf.reservation.StartDate,
		TillDate:       wf.reservation.TillDate,
		Book:           wf.book,
		Library:        wf.library,
		Rating:         wf.rating,
	}, nil
}
