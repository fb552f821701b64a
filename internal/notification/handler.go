package notification

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, identity internal.Identity, filter ListFilter) ([]*Notification, int64, error)
	MarkRead(ctx context.Context, identity internal.Identity, notificationID string) error
	MarkAllRead(ctx context.Context, identity internal.Identity) (int64, error)
}

type NotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	Total         int64           `json:"total"`
	Limit         int             `json:"limit"`
	Offset        int             `json:"offset"`
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := h.Page(r)
	items, total, err := h.Service.List(r.Context(), identity, ListFilter{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NotificationsResponse{
		Notifications: items,
		Total:         total,
		Limit:         limit,
		Offset:        offset,
	})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.MarkRead(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	n, err := h.Service.MarkAllRead(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]int64{"modified": n})
}
