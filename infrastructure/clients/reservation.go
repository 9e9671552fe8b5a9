package clients

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"library-gateway/application/resilience"
	"library-gateway/domain"
)

// createReservationRequest is the wire body for creating a reservation
type createReservationRequest struct {
	BookUID    string `json:"bookUid"`
	LibraryUID string `json:"libraryUid"`
	TillDate   string `json:"tillDate"`
}

// closeReservationRequest is the wire body for closing a reservation
type closeReservationRequest struct {
	Condition domain.BookCondition `json:"condition"`
	Date      string               `json:"date"`
}

// ReservationClient calls the Reservation service
type ReservationClient struct {
	baseClient
}

// NewReservationClient creates a Reservation service client
func NewReservationClient(config Config, breaker *resilience.Breaker, logger *zap.Logger) *ReservationClient {
	return &ReservationClient{
		baseClient: newBaseClient(ServiceReservation, config.ReservationBaseURL, config.RequestTimeout, breaker, logger),
	}
}

// GetReservations returns all of the user's reservations
func (c *ReservationClient) GetReservations(ctx context.Context, username string) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := c.call(ctx, http.MethodGet, "/Reservation/AllReservations", nil, username, nil, &reservations)
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// CountActive returns how many of the user's reservations are still rented
func (c *ReservationClient) CountActive(ctx context.Context, username string) (int, error) {
	reservations, err := c.GetReservations(ctx, username)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, r := range reservations {
		if r.Status == domain.StatusRented {
			count++
		}
	}
	return count, nil
}

// CreateReservation mints a new RENTED reservation for the user
func (c *ReservationClient) CreateReservation(ctx context.Context, username, bookUID, libraryUID, tillDate string) (domain.Reservation, error) {
	body := createReservationRequest{
		BookUID:    bookUID,
		LibraryUID: libraryUID,
		TillDate:   tillDate,
	}
	var reservation domain.Reservation
	err := c.call(ctx, http.MethodPost, "/Reservation/CreateNewReservation", nil, username, body, &reservation)
	return reservation, err
}

// CloseReservation closes a reservation; the service computes the final
// status from the return date and reports it back, bookUid included.
func (c *ReservationClient) CloseReservation(ctx context.Context, username, reservationUID string, condition domain.BookCondition, date string) (domain.Reservation, error) {
	query := url.Values{"resId": {reservationUID}}
	body := closeReservationRequest{Condition: condition, Date: date}
	var reservation domain.Reservation
	err := c.call(ctx, http.MethodPost, "/Reservation/CloseReservation", query, username, body, &reservation)
	return reservation, err
}

// CancelReservation deletes a reservation. Used as the compensating action
// when a later borrow step fails after the reservation was created.
func (c *ReservationClient) CancelReservation(ctx context.Context, reservationUID string) error {
	query := url.Values{"id": {reservationUID}}
	return c.call(ctx, http.MethodGet, "/Reservations/DeleteReservation", query, "", nil, nil)
}
