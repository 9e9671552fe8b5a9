package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "library-gateway/pkg/errors"
)

// unavailableMessage is the uniform body for any downstream outage,
// whether the breaker rejected the call or the call itself failed.
const unavailableMessage = "Library System unavailable"

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	respondJSON(w, logger, status, ErrorResponse{Message: message})
}

// respondAppError maps an application error onto the gateway's HTTP
// contract: validation 400, business rule 403, downstream outage 503 with
// the uniform message, anything else 500.
func respondAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if apperrors.IsDownstream(err) {
		respondError(w, logger, http.StatusServiceUnavailable, unavailableMessage)
		return
	}
	if appErr := apperrors.GetAppError(err); appErr != nil {
		respondError(w, logger, appErr.HTTPStatus, appErr.Message)
		return
	}
	respondError(w, logger, http.StatusInternalServerError, "internal error")
}
