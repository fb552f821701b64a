package user

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor internal.Identity, dto CreateUserDTO) (*User, error)
	Get(ctx context.Context, companyID, userID string) (*User, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*User, int64, error)
	Update(ctx context.Context, actor internal.Identity, userID string, dto UpdateUserDTO) (*User, error)
	SetStatus(ctx context.Context, actor internal.Identity, userID, status string) (*User, error)
	Signup(ctx context.Context, dto SignupDTO) (*SignupResponse, error)
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

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit, offset := h.Page(r)
	q := r.URL.Query()
	users, total, err := h.Service.List(r.Context(), identity.CompanyID, ListFilter{
		Status:  q.Get("status"),
		RoleKey: q.Get("role_key"),
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: users, Total: total, Limit: limit, Offset: offset})
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateUserDTO
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

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.Get(r.Context(), identity.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// UpdateUser handles PUT /users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.Update(r.Context(), identity, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// SetUserStatus handles PATCH /users/{id}/status
func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto StatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.SetStatus(r.Context(), identity, chi.URLParam(r, "id"), dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// Signup handles POST /auth/signup. It is public.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.Signup(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("signup failed", "error", err, "company_id", dto.CompanyID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}
