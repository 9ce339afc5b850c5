// Package rest exposes the admin notification list over HTTP.
package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/notification"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Inbox is the part of *notification.Inbox the handlers use.
type Inbox interface {
	List(ctx context.Context) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}

type Handler struct {
	inbox  Inbox
	logger *slog.Logger
}

func NewHandler(inbox Inbox, logger *slog.Logger) *Handler {
	return &Handler{inbox: inbox, logger: logger.With("component", "rest")}
}

type listResponse struct {
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unread_count"`
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/read", h.MarkAllRead)
		r.Post("/{id}/read", h.MarkRead)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.inbox.List(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Failed to list notifications", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to list notifications")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, listResponse{Notifications: list, UnreadCount: notification.UnreadCount(list)})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	if err := h.inbox.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			web.RespondError(w, mLogger, http.StatusNotFound, "Notification "+id+" not found")
			return
		}
		mLogger.ErrorContext(r.Context(), "Failed to mark notification read", "error", err, "id", id)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to mark notification read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := h.inbox.MarkAllRead(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Failed to mark notifications read", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", middleware.GetReqID(r.Context()))
}
