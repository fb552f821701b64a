package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/pkg/logger"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var _ = Describe("Middleware", func() {
	Describe("LoggingMiddleware", func() {
		It("never writes pins or tokens to the log", func() {
			var buf bytes.Buffer
			lg := slog.New(slog.NewJSONHandler(&buf, nil))
			h := LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"message":"Your temporary PIN is 918273"}`))
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
				strings.NewReader(`{"company_id":"c1","identifier":"a@x.io","pin":"482913"}`))
			req.Header.Set("Authorization", "Bearer abc.def")
			h.ServeHTTP(httptest.NewRecorder(), req)

			out := buf.String()
			Expect(out).To(ContainSubstring("a@x.io"))
			Expect(out).NotTo(ContainSubstring("482913"))
			Expect(out).NotTo(ContainSubstring("abc.def"))
			Expect(out).NotTo(ContainSubstring("918273"))
		})

		It("carries request and caller fields into service and response lines", func() {
			var buf bytes.Buffer
			lg := slog.New(slog.NewJSONHandler(&buf, nil))
			service := logger.Contextual(lg)

			authenticate := func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					ctx := logger.With(r.Context(), "company_id", "c1", "user_id", "usr_1")
					NoteCaller(ctx, "company_id", "c1", "user_id", "usr_1")
					next.ServeHTTP(w, r.WithContext(ctx))
				})
			}
			h := RequestID(LoggingMiddleware(lg)(authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				service.InfoContext(r.Context(), "leave requested")
				w.WriteHeader(http.StatusCreated)
			}))))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves", strings.NewReader(`{}`))
			req.Header.Set(RequestIDHeader, "req-42")
			h.ServeHTTP(httptest.NewRecorder(), req)

			lines := map[string]map[string]any{}
			for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				var entry map[string]any
				Expect(json.Unmarshal([]byte(raw), &entry)).To(Succeed())
				lines[entry["msg"].(string)] = entry
			}
			Expect(lines["incoming request"]).To(HaveKeyWithValue("request_id", "req-42"))
			Expect(lines["leave requested"]).To(HaveKeyWithValue("request_id", "req-42"))
			Expect(lines["leave requested"]).To(HaveKeyWithValue("user_id", "usr_1"))
			Expect(lines["response"]).To(HaveKeyWithValue("user_id", "usr_1"))
			Expect(lines["response"]).To(HaveKeyWithValue("company_id", "c1"))
		})

		It("keeps the request body readable for the handler", func() {
			lg := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
			var seen string
			h := LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var b bytes.Buffer
				_, _ = b.ReadFrom(r.Body)
				seen = b.String()
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
			Expect(seen).To(Equal(`{"a":1}`))
		})
	})

	Describe("RequestID", func() {
		It("propagates an incoming id and mints one otherwise", func() {
			var got string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = internal.RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, "req-1")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			Expect(got).To(Equal("req-1"))
			Expect(rec.Header().Get(RequestIDHeader)).To(Equal("req-1"))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(got).To(HaveLen(36))
		})
	})

	Describe("RecoveryMiddleware", func() {
		It("answers 500 without leaking the panic value", func() {
			lg := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
			h := RecoveryMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic("secret state")
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).NotTo(ContainSubstring("secret state"))
		})
	})

	Describe("CORS", func() {
		It("answers preflight for allowed origins only", func() {
			h := CORS("https://hr.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/leaves", nil)
			req.Header.Set("Origin", "https://hr.example.com")
			req.Header.Set("Access-Control-Request-Method", "POST")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://hr.example.com"))

			req.Header.Set("Origin", "https://evil.example.com")
			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		})
	})
})
