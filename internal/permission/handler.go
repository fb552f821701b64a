package permission

import (
	"net/http"

	"github.com/frahmantamala/office-hr/internal/transport"
)

type RolesResponse struct {
	Roles []Role `json:"roles"`
}

type Handler struct {
	*transport.BaseHandler
	Matrix *Matrix
}

func NewHandler(baseHandler *transport.BaseHandler, matrix *Matrix) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Matrix:      matrix,
	}
}

// ListRoles returns the role table the server was started with.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: h.Matrix.Roles()})
}
