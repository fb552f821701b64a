package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/office-hr/pkg/logger"
)

// sensitiveFields are matched as substrings of lower-cased header names and
// JSON keys.
var sensitiveFields = []string{
	"pin",
	"password",
	"secret",
	"token",
	"authorization",
	"cookie",
	"credential",
	"api_key",
	"session",
}

const maxLoggedBody = 4 << 10

// LoggingMiddleware logs each request with a filtered body and each response
// with its status and size. Both lines carry the fields RequestID put on the
// context; the response line also carries the caller resolved further down
// the chain. Response bodies are not logged: notification listings may carry
// a one-time credential.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	lg := logger.Contextual(base)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logRequest(lg, r)

			ww := &responseWriter{ResponseWriter: w}
			caller := &callerSlot{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))

			ctx := r.Context()
			if len(caller.fields) > 0 {
				ctx = logger.With(ctx, caller.fields...)
			}
			logResponse(ctx, lg, r, ww, time.Since(start))
		})
	}
}

type callerKey struct{}

// callerSlot lets an inner middleware hand caller fields back to the
// response log line.
type callerSlot struct {
	fields []any
}

// NoteCaller records fields for the enclosing LoggingMiddleware's response
// line. It is a no-op outside LoggingMiddleware.
func NoteCaller(ctx context.Context, fields ...any) {
	if slot, ok := ctx.Value(callerKey{}).(*callerSlot); ok {
		slot.fields = append(slot.fields, fields...)
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func logRequest(lg *slog.Logger, r *http.Request) {
	var bodyBytes []byte
	if r.Body != nil {
		bodyBytes, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}

	lg.InfoContext(r.Context(), "incoming request",
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", filterSensitiveHeaders(r.Header),
		"body", filterSensitiveBody(bodyBytes),
	)
}

func logResponse(ctx context.Context, lg *slog.Logger, r *http.Request, rw *responseWriter, duration time.Duration) {
	statusCode := rw.statusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}

	lg.Log(ctx, level, "response",
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"response_size", rw.size,
	)
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			filtered[name] = "[FILTERED]"
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}

func filterSensitiveBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if len(body) > maxLoggedBody || isSensitive(string(body)) {
			return "[FILTERED]"
		}
		return string(body)
	}

	out, err := json.Marshal(filterSensitiveJSON(data))
	if err != nil {
		return "[FILTERED]"
	}
	if len(out) > maxLoggedBody {
		return string(out[:maxLoggedBody]) + "...(truncated)"
	}
	return string(out)
}

func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				filtered[key] = "[FILTERED]"
				continue
			}
			filtered[key] = filterSensitiveJSON(value)
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = filterSensitiveJSON(item)
		}
		return filtered
	default:
		return v
	}
}
