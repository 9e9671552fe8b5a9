package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"library-gateway/application/sagas"
	"library-gateway/domain"
	"library-gateway/interfaces/http/rest/middleware"
	"library-gateway/pkg/utils"
)

// ReservationWorkflow is the orchestrator surface the handler drives
type ReservationWorkflow interface {
	ListReservations(ctx context.Context, username string) ([]sagas.ReservationDetails, error)
	TakeBook(ctx context.Context, input sagas.TakeBookInput) (sagas.TakeBookResult, error)
	ReturnBook(ctx context.Context, input sagas.ReturnBookInput) error
}

// ReservationHandler serves the borrow and return workflows
type ReservationHandler struct {
	workflow ReservationWorkflow
	logger   *zap.Logger
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(workflow ReservationWorkflow, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		workflow: workflow,
		logger:   logger,
	}
}

// TakeBookRequest is the request body for borrowing a book
type TakeBookRequest struct {
	BookUID    string `json:"bookUid" validate:"required,uuid"`
	LibraryUID string `json:"libraryUid" validate:"required,uuid"`
	TillDate   string `json:"tillDate" validate:"required,date"`
}

// ReturnBookRequest is the request body for returning a book
type ReturnBookRequest struct {
	Condition string `json:"condition" validate:"required,oneof=EXCELLENT GOOD BAD"`
	Date      string `json:"date" validate:"required,date"`
}

// ListReservations handles GET /reservations
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())

	details, err := h.workflow.ListReservations(r.Context(), username)
	if err != nil {
		h.logger.Error("failed to list reservations",
			zap.String("username", username),
			zap.Error(err),
		)
		respondAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, details)
}

// TakeBook handles POST /reservations
func (h *ReservationHandler) TakeBook(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())

	var req TakeBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.workflow.TakeBook(r.Context(), sagas.TakeBookInput{
		Username:   username,
		BookUID:    req.BookUID,
		LibraryUID: req.LibraryUID,
		TillDate:   req.TillDate,
	})
	if err != nil {
		h.logger.Error("borrow workflow failed",
			zap.String("username", username),
			zap.String("bookUid", req.BookUID),
			zap.Error(err),
		)
		respondAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// ReturnBook handles POST /reservations/{reservationUid}/return
func (h *ReservationHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())

	reservationUID := chi.URLParam(r, "reservationUid")
	if _, err := uuid.Parse(reservationUID); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid reservation uid")
		return
	}

	var req ReturnBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	err := h.workflow.ReturnBook(r.Context(), sagas.ReturnBookInput{
		Username:       username,
		ReservationUID: reservationUID,
		Condition:      domain.BookCondition(req.Condition),
		ReturnDate:     req.Date,
	})
	if err != nil {
		h.logger.Error("return workflow failed",
			zap.String("username", username),
			zap.String("reservationUid", reservationUID),
			zap.Error(err),
		)
		respondAppError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
