package company

import (
	"context"
	"net/http"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	Get(ctx context.Context, companyID string) (*Profile, error)
	Save(ctx context.Context, actor internal.Identity, dto SaveCompanyDTO) (*Profile, error)
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

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	profile, err := h.Service.Get(r.Context(), identity.CompanyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) SaveCompany(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto SaveCompanyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	profile, err := h.Service.Save(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, profile)
}
