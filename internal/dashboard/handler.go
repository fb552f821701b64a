package dashboard

import (
	"context"
	"net/http"

	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	Summary(ctx context.Context, companyID string) (*Summary, error)
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

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	summary, err := h.Service.Summary(r.Context(), identity.CompanyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}
