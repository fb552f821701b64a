package audit

import (
	"context"
	"net/http"

	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, companyID string, filter ListFilter) ([]*Entry, int64, error)
}

type EntriesResponse struct {
	Entries []*Entry `json:"entries"`
	Total   int64    `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
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

func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := h.Page(r)
	q := r.URL.Query()
	entries, total, err := h.Service.List(r.Context(), identity.CompanyID, ListFilter{
		EntityType: q.Get("entity_type"),
		Action:     q.Get("action"),
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, EntriesResponse{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}
