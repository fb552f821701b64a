package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval/approvaltest"
	employeeDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/employee"
	sessionDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/session"
	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/core/security"
	"github.com/frahmantamala/office-hr/internal/employee"
	"github.com/frahmantamala/office-hr/internal/employee/employeetest"
	"github.com/frahmantamala/office-hr/internal/permission"
	"github.com/frahmantamala/office-hr/internal/transport"
	"github.com/frahmantamala/office-hr/internal/user"
	"github.com/frahmantamala/office-hr/internal/user/usertest"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*sessionDatamodel.Session
	touched  []string
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*sessionDatamodel.Session)}
}

func (m *mockSessionRepository) Create(_ context.Context, s *sessionDatamodel.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.TokenHash] = &cp
	return nil
}

func (m *mockSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*sessionDatamodel.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tokenHash]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepository) DeleteByTokenHash(_ context.Context, tokenHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[tokenHash]; !ok {
		return 0, nil
	}
	delete(m.sessions, tokenHash)
	return 1, nil
}

func (m *mockSessionRepository) Touch(_ context.Context, tokenHash string, meta ClientMeta, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[tokenHash]; ok {
		s.LastSeenAt = at
		s.UserAgent = meta.UserAgent
		s.IP = meta.IP
		m.touched = append(m.touched, tokenHash)
	}
	return nil
}

func (m *mockSessionRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		sessions  *mockSessionRepository
		users     *usertest.MemoryRepository
		employees *employeetest.MemoryRepository
		audit     *approvaltest.Recorder
		service   *Service
		ctx       context.Context
		meta      ClientMeta
		logger    *slog.Logger
	)

	putEmployee := func(code, userID string) {
		gomega.Expect(employees.Create(ctx, &employeeDatamodel.Employee{
			ID:           "emp_" + code,
			CompanyID:    "c1",
			EmployeeCode: code,
			FullName:     "Employee " + code,
			Status:       employee.StatusActive,
			UserID:       userID,
		})).To(gomega.Succeed())
	}

	putUser := func(id, email, code, status, pin string) {
		hashed, err := security.NewHasher(security.DefaultIterations).HashSecret(pin)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		u := &userDatamodel.User{
			ID:               id,
			CompanyID:        "c1",
			Email:            email,
			FullName:         "User " + id,
			RoleKey:          permission.RoleHR,
			Status:           status,
			SecretHash:       hashed.Hash,
			SecretSalt:       hashed.Salt,
			SecretIterations: hashed.Iterations,
		}
		users.Put(u)
		if code != "" {
			putEmployee(code, id)
		}
	}

	ginkgo.BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		sessions = newMockSessionRepository()
		users = usertest.NewMemoryRepository()
		employees = employeetest.NewMemoryRepository()
		audit = &approvaltest.Recorder{}
		service = NewService(sessions, users, employees, security.NewHasher(security.DefaultIterations), time.Hour, audit, logger)
		ctx = context.Background()
		meta = ClientMeta{UserAgent: "ginkgo", IP: "10.0.0.1"}

		putUser("usr_1", "hr@acme.io", "EMP-1", user.StatusActive, "482913")
		putUser("usr_2", "gone@acme.io", "", user.StatusInactive, "482913")
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("issues a bearer token for an email identifier", func() {
			resp, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: "HR@acme.io", Pin: "482913"}, meta)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(resp.TokenType).To(gomega.Equal("Bearer"))
			gomega.Expect(resp.User.ID).To(gomega.Equal("usr_1"))
			gomega.Expect(resp.User.RoleKey).To(gomega.Equal(permission.RoleHR))
			gomega.Expect(sessions.count()).To(gomega.Equal(1))
			gomega.Expect(audit.Actions()).To(gomega.ConsistOf("LOGIN"))

			stored, err := sessions.FindByTokenHash(ctx, security.HashToken(resp.AccessToken))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(stored.TokenHash).NotTo(gomega.Equal(resp.AccessToken))
			gomega.Expect(stored.IP).To(gomega.Equal("10.0.0.1"))
		})

		ginkgo.It("accepts an employee code", func() {
			resp, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: "EMP-1", Pin: "482913"}, meta)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.User.ID).To(gomega.Equal("usr_1"))
		})

		ginkgo.DescribeTable("answers an employee code that leads to no account as an unknown user",
			func(code string) {
				putEmployee("EMP-9", "")
				putEmployee("EMP-8", "usr_elsewhere")

				_, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: code, Pin: "482913"}, meta)
				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
				gomega.Expect(errors.Is(err, ReasonUnknownUser)).To(gomega.BeTrue())
				gomega.Expect(sessions.count()).To(gomega.BeZero())
			},
			ginkgo.Entry("unknown code", "EMP-404"),
			ginkgo.Entry("employee without a linked account", "EMP-9"),
			ginkgo.Entry("link to a user that does not exist", "EMP-8"),
		)

		ginkgo.It("rejects a wrong pin without creating a session", func() {
			resp, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: "hr@acme.io", Pin: "000000"}, meta)
			gomega.Expect(resp).To(gomega.BeNil())
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(errors.Is(err, ReasonBadSecret)).To(gomega.BeTrue())
			gomega.Expect(sessions.count()).To(gomega.BeZero())
		})

		ginkgo.It("answers an inactive account like a bad pin", func() {
			_, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: "gone@acme.io", Pin: "482913"}, meta)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(errors.Is(err, ReasonInactive)).To(gomega.BeTrue())

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Message).To(gomega.Equal(internal.ErrInvalidCredentials.Message))
			gomega.Expect(sessions.count()).To(gomega.BeZero())
		})

		ginkgo.It("answers an unknown identifier the same way", func() {
			_, err := service.Login(ctx, LoginDTO{CompanyID: "c2", Identifier: "hr@acme.io", Pin: "482913"}, meta)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(errors.Is(err, ReasonUnknownUser)).To(gomega.BeTrue())
		})

		ginkgo.It("validates required fields", func() {
			_, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: " "}, meta)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
		})
	})

	ginkgo.Describe("Authenticate", func() {
		login := func() string {
			resp, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: "hr@acme.io", Pin: "482913"}, meta)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			return resp.AccessToken
		}

		ginkgo.It("resolves the identity and refreshes the session", func() {
			token := login()
			identity, err := service.Authenticate(ctx, token, ClientMeta{UserAgent: "curl", IP: "10.0.0.2"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(identity).To(gomega.Equal(internal.Identity{CompanyID: "c1", UserID: "usr_1", Role: permission.RoleHR}))

			stored, _ := sessions.FindByTokenHash(ctx, security.HashToken(token))
			gomega.Expect(stored.UserAgent).To(gomega.Equal("curl"))
			gomega.Expect(sessions.touched).To(gomega.HaveLen(1))
		})

		ginkgo.It("deletes an expired session on lookup", func() {
			token := login()
			service.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

			_, err := service.Authenticate(ctx, token, meta)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
			gomega.Expect(sessions.count()).To(gomega.BeZero())
		})

		ginkgo.It("rejects unknown and missing tokens", func() {
			_, err := service.Authenticate(ctx, "not-a-token", meta)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))

			_, err = service.Authenticate(ctx, "", meta)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrMissingIdentity))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("removes the session and tolerates repeats", func() {
			resp, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: "hr@acme.io", Pin: "482913"}, meta)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Logout(ctx, resp.AccessToken)).To(gomega.Succeed())
			gomega.Expect(service.Logout(ctx, resp.AccessToken)).To(gomega.Succeed())
			gomega.Expect(sessions.count()).To(gomega.BeZero())

			_, err = service.Authenticate(ctx, resp.AccessToken, meta)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})

	ginkgo.Describe("HTTP middleware", func() {
		var router http.Handler

		ginkgo.BeforeEach(func() {
			handler := NewHandler(transport.NewBaseHandler(logger), service)
			rbac := NewRBACAuthorization(permission.NewMatrix(nil), logger)
			ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

			mux := http.NewServeMux()
			mux.Handle("/me", handler.AuthMiddleware(http.HandlerFunc(handler.Me)))
			mux.Handle("/audit", handler.AuthMiddleware(rbac.Check(ok, "audit:read")))
			mux.Handle("/leaves", handler.AuthMiddleware(rbac.Check(ok, "leaves:read")))
			router = mux
		})

		serve := func(path, token string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		ginkgo.It("returns 401 without a token", func() {
			gomega.Expect(serve("/me", "").Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("serves the caller's profile without secret fields", func() {
			resp, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: "hr@acme.io", Pin: "482913"}, meta)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			rec := serve("/me", resp.AccessToken)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"id":"usr_1"`))
			gomega.Expect(rec.Body.String()).NotTo(gomega.ContainSubstring("secret"))
		})

		ginkgo.It("returns 403 when the role lacks the permission", func() {
			resp, err := service.Login(ctx, LoginDTO{CompanyID: "c1", Identifier: "hr@acme.io", Pin: "482913"}, meta)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(serve("/audit", resp.AccessToken).Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(serve("/leaves", resp.AccessToken).Code).To(gomega.Equal(http.StatusOK))
		})
	})
})
