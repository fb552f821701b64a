package attendance

import (
	"context"
	"net/http"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/transport"
)

type ServiceAPI interface {
	Upsert(ctx context.Context, actor internal.Identity, dto UpsertAttendanceDTO) (*Record, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*Record, int64, error)
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

func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	q := r.URL.Query()
	limit, offset := h.Page(r)
	records, total, err := h.Service.List(r.Context(), identity.CompanyID, ListFilter{
		Date:       q.Get("date"),
		Department: q.Get("department"),
		Status:     q.Get("status"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AttendanceResponse{Records: records, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) UpsertAttendance(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpsertAttendanceDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	record, err := h.Service.Upsert(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record)
}
