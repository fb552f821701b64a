package approval

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, in NewApproval) (*Approval, error)
	Get(ctx context.Context, companyID, approvalID string) (*Approval, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*Approval, int64, error)
	Decide(ctx context.Context, actor internal.Identity, approvalID string, outcome Status, comment string) (*Approval, error)
	Replay(ctx context.Context, actor internal.Identity, approvalID string) (*Approval, error)
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

func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := h.Page(r)
	filter := ListFilter{
		Status:     r.URL.Query().Get("status"),
		EntityType: r.URL.Query().Get("entity_type"),
		Limit:      limit,
		Offset:     offset,
	}

	approvals, total, err := h.Service.List(r.Context(), identity.CompanyID, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ApprovalsResponse{
		Approvals: approvals,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

func (h *Handler) CreateApproval(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateApprovalDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("CreateApproval: invalid request body", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), NewApproval{
		CompanyID:   identity.CompanyID,
		EntityType:  dto.EntityType,
		EntityID:    dto.EntityID,
		WorkflowKey: dto.WorkflowKey,
		CurrentStep: dto.CurrentStep,
		RequestedBy: identity.UserID,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetApproval(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) ApproveApproval(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusApproved)
}

func (h *Handler) RejectApproval(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, outcome Status) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	dto, err := h.decodeDecision(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	approvalID := chi.URLParam(r, "id")
	decided, err := h.Service.Decide(r.Context(), identity, approvalID, outcome, dto.Comment)
	if err != nil {
		h.Logger.Warn("decide approval failed", "approval_id", approvalID, "outcome", outcome, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, decided)
}

func (h *Handler) ReplayApproval(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	replayed, err := h.Service.Replay(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, replayed)
}

// decodeDecision accepts an empty body; the comment is optional.
func (h *Handler) decodeDecision(r *http.Request) (DecisionDTO, error) {
	var dto DecisionDTO
	if r.Body == nil || r.ContentLength == 0 {
		return dto, nil
	}
	if err := h.DecodeJSON(r, &dto); err != nil {
		var appErr *internal.AppError
		if errors.As(err, &appErr) && errors.Is(appErr.Cause, io.EOF) {
			return dto, nil
		}
		return dto, err
	}
	return dto, nil
}
