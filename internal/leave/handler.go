package leave

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, identity internal.Identity, dto CreateLeaveDTO) (*Leave, error)
	Get(ctx context.Context, companyID, leaveID string) (*Leave, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*Leave, int64, error)
	Approve(ctx context.Context, actor internal.Identity, leaveID, comment string) (*Leave, error)
	Reject(ctx context.Context, actor internal.Identity, leaveID, comment string) (*Leave, error)
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

func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateLeaveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), identity, dto)
	if err != nil {
		h.Logger.Error("CreateLeave: service error", "error", err, "user_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := h.Page(r)
	leaves, total, err := h.Service.List(r.Context(), identity.CompanyID, ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, LeavesResponse{Leaves: leaves, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	found, err := h.Service.Get(r.Context(), identity.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto DecisionDTO
	if r.ContentLength > 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleServiceError(w, err)
			return
		}
	}
	// the comment may also come as a query parameter
	if dto.Comment == "" {
		dto.Comment = r.URL.Query().Get("comment")
	}

	leaveID := chi.URLParam(r, "id")
	var updated *Leave
	if approve {
		updated, err = h.Service.Approve(r.Context(), identity, leaveID, dto.Comment)
	} else {
		updated, err = h.Service.Reject(r.Context(), identity, leaveID, dto.Comment)
	}
	if err != nil {
		h.Logger.Warn("leave decision failed", "error", err, "leave_id", leaveID, "approve", approve)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}
