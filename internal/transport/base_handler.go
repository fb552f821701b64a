package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/pkg/logger"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a plain validation-style error response.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	appErr := &internal.AppError{
		Type:       internal.ErrorTypeValidation,
		Code:       internal.ErrCodeValidationFailed,
		Message:    message,
		StatusCode: status,
	}
	h.HandleServiceError(w, appErr)
}

// HandleServiceError maps any error returned by a service onto the JSON error
// envelope. Causes are logged but never serialized.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr := internal.AsAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		h.Logger.Error("http error", "status", appErr.StatusCode, "code", appErr.Code, "error", err)
	} else {
		h.Logger.Warn("http error", "status", appErr.StatusCode, "code", appErr.Code, "message", appErr.Message)
	}
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed).WithCause(err)
		}
		return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return nil
}

// Identity returns the authenticated caller or ErrMissingIdentity.
func (h *BaseHandler) Identity(r *http.Request) (internal.Identity, error) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		return internal.Identity{}, internal.ErrMissingIdentity
	}
	return identity, nil
}

// Page reads limit and offset from the query string.
func (h *BaseHandler) Page(r *http.Request) (limit, offset int) {
	limit = DefaultPageLimit

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= MaxPageLimit {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}

	return strings.TrimSpace(authHeader[7:])
}

// ClientIP prefers the first X-Forwarded-For hop over RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
