package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/permission"
	"github.com/frahmantamala/office-hr/internal/transport"
)

// RBACAuthorization gates routes on the caller's role, resolved through the
// permission matrix. It must run after AuthMiddleware.
type RBACAuthorization struct {
	*transport.BaseHandler
	matrix *permission.Matrix
}

func NewRBACAuthorization(matrix *permission.Matrix, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		matrix:      matrix,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, required string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := internal.IdentityFromContext(r.Context())
		if !ok {
			ra.Logger.Warn("authorization check failed: identity not found in context")
			ra.HandleServiceError(w, internal.ErrMissingIdentity)
			return
		}

		if err := ra.matrix.Require(identity.Role, required); err != nil {
			ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", identity.UserID,
				"role", identity.Role,
				"required_permission", required)
			ra.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, required)
	}
}
