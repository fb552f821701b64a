package employee

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor internal.Identity, dto CreateEmployeeDTO) (*Employee, error)
	Get(ctx context.Context, companyID, employeeID string) (*Employee, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*Employee, int64, error)
	Update(ctx context.Context, actor internal.Identity, employeeID string, dto UpdateEmployeeDTO) (*Employee, error)
	Delete(ctx context.Context, actor internal.Identity, employeeID string) error
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

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	q := r.URL.Query()
	limit, offset := h.Page(r)
	employees, total, err := h.Service.List(r.Context(), identity.CompanyID, ListFilter{
		Status:     q.Get("status"),
		Department: q.Get("department"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, EmployeesResponse{Employees: employees, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateEmployeeDTO
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

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateEmployeeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), identity, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.Logger.Warn("UpdateEmployee: service error", "error", err, "employee_id", chi.URLParam(r, "id"))
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
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
