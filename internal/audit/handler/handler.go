// Package handler exposes the audit trail review endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"medgate/internal/audit"
	httpError "medgate/internal/transport/http/error"
	jsonResponse "medgate/internal/transport/http/json"
)

// Handler serves the paginated activity listings for administrators.
type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

// New creates an audit Handler.
func New(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register registers the activity routes. The parent router applies the
// session-token and admin-role middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/activities", h.HandleListActivities)
	r.Get("/activities/suspicious", h.HandleListSuspicious)
}

// HandleListActivities implements GET /activities: every recorded event,
// newest first.
func (h *Handler) HandleListActivities(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	events, total, err := h.store.ListRecent(r.Context(), page)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list activities", "error", err)
		httpError.WriteError(w, err)
		return
	}
	writePage(w, events, total, page)
}

// HandleListSuspicious implements GET /activities/suspicious: only events
// flagged suspicious at creation, newest first.
func (h *Handler) HandleListSuspicious(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	events, total, err := h.store.ListSuspicious(r.Context(), page)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list suspicious activities", "error", err)
		httpError.WriteError(w, err)
		return
	}
	writePage(w, events, total, page)
}

func pageFromQuery(r *http.Request) audit.Page {
	page := audit.Page{}
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page.Number = n
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		page.Size = size
	}
	return page.Normalize()
}

func writePage(w http.ResponseWriter, events []audit.Event, total int, page audit.Page) {
	totalPages := (total + page.Size - 1) / page.Size
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"activities":       events,
		"current_page":     page.Number,
		"total_pages":      totalPages,
		"total_activities": total,
	})
}
