package vault

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor internal.Identity, dto CreateItemDTO) (*Item, error)
	Get(ctx context.Context, actor internal.Identity, itemID string) (*Item, error)
	List(ctx context.Context, actor internal.Identity, filter ListFilter) ([]*Item, int64, error)
	Update(ctx context.Context, actor internal.Identity, itemID string, dto UpdateItemDTO) (*Item, error)
	ResetSecret(ctx context.Context, actor internal.Identity, itemID string, dto ResetSecretDTO) (*Item, error)
	Delete(ctx context.Context, actor internal.Identity, itemID string) error
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

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := h.Page(r)
	items, total, err := h.Service.List(r.Context(), identity, ListFilter{Limit: limit, Offset: offset})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ItemsResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateItemDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	item, err := h.Service.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateItemDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	item, err := h.Service.Update(r.Context(), identity, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) ResetSecret(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto ResetSecretDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	item, err := h.Service.ResetSecret(r.Context(), identity, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.Logger.Warn("ResetSecret: service error", "error", err, "item_id", chi.URLParam(r, "id"))
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
