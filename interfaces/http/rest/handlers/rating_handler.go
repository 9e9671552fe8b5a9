package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"library-gateway/domain"
	"library-gateway/interfaces/http/rest/middleware"
)

// RatingReader is the slice of the Rating client the handler needs
type RatingReader interface {
	GetRating(ctx context.Context, username string) (domain.Rating, error)
}

// RatingHandler serves the user rating read
type RatingHandler struct {
	rating RatingReader
	logger *zap.Logger
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(rating RatingReader, logger *zap.Logger) *RatingHandler {
	return &RatingHandler{
		rating: rating,
		logger: logger,
	}
}

// GetRating handles GET /rating
func (h *RatingHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())

	rating, err := h.rating.GetRating(r.Context(), username)
	if err != nil {
		h.logger.Error("failed to fetch rating",
			zap.String("username", username),
			zap.Error(err),
		)
		respondAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, rating)
}
