package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/transport"
	"github.com/frahmantamala/office-hr/internal/transport/middleware"
	"github.com/frahmantamala/office-hr/internal/user"
	"github.com/frahmantamala/office-hr/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, meta ClientMeta) (*LoginResponse, error)
	Authenticate(ctx context.Context, token string, meta ClientMeta) (internal.Identity, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, identity internal.Identity) (*user.User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func clientMeta(r *http.Request) ClientMeta {
	return ClientMeta{UserAgent: r.UserAgent(), IP: transport.ClientIP(r)}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), dto, clientMeta(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(r.Context(), h.ExtractTokenFromHeader(r)); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.Me(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// AuthMiddleware resolves the bearer token and stores the caller's identity
// on the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.Service.Authenticate(r.Context(), h.ExtractTokenFromHeader(r), clientMeta(r))
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithIdentity(r.Context(), identity)
		ctx = logger.With(ctx, "company_id", identity.CompanyID, "user_id", identity.UserID)
		middleware.NoteCaller(ctx, "company_id", identity.CompanyID, "user_id", identity.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
