package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"library-gateway/infrastructure/clients"
	"library-gateway/interfaces/http/rest/middleware"
)

// LibraryReader is the slice of the Library client the handler needs
type LibraryReader interface {
	GetLibraries(ctx context.Context, city string, page clients.PageQuery) (clients.LibraryPage, error)
	GetLibraryBooks(ctx context.Context, libraryUID string, page clients.PageQuery) (clients.LibraryBookPage, error)
}

// LibraryHandler serves the pass-through library reads
type LibraryHandler struct {
	library LibraryReader
	logger  *zap.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library LibraryReader, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{
		library: library,
		logger:  logger,
	}
}

// ListLibraries handles GET /libraries
func (h *LibraryHandler) ListLibraries(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		respondError(w, h.logger, http.StatusBadRequest, "city query parameter is required")
		return
	}

	page, err := parsePageQuery(r)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.library.GetLibraries(r.Context(), city, page)
	if err != nil {
		h.logger.Error("failed to list libraries",
			zap.String("city", city),
			zap.String("username", middleware.UsernameFromContext(r.Context())),
			zap.Error(err),
		)
		respondAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// ListLibraryBooks handles GET /libraries/{libraryUid}/books
func (h *LibraryHandler) ListLibraryBooks(w http.ResponseWriter, r *http.Request) {
	libraryUID := chi.URLParam(r, "libraryUid")
	if _, err := uuid.Parse(libraryUID); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid library uid")
		return
	}

	page, err := parsePageQuery(r)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.library.GetLibraryBooks(r.Context(), libraryUID, page)
	if err != nil {
		h.logger.Error("failed to list library books",
			zap.String("libraryUid", libraryUID),
			zap.Error(err),
		)
		respondAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// parsePageQuery extracts pass-through pagination parameters. Absent
// parameters stay unset so the downstream service applies its defaults.
func parsePageQuery(r *http.Request) (clients.PageQuery, error) {
	var page clients.PageQuery

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, errInvalidParam("page")
		}
		page.Page = &n
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, errInvalidParam("size")
		}
		page.Size = &n
	}
	if raw := r.URL.Query().Get("showAll"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return page, errInvalidParam("showAll")
		}
		page.ShowAll = &b
	}
	return page, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid " + string(e) + " query parameter"
}
