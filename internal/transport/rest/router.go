package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/office-hr/internal/approval"
	"github.com/frahmantamala/office-hr/internal/attendance"
	"github.com/frahmantamala/office-hr/internal/audit"
	"github.com/frahmantamala/office-hr/internal/auth"
	"github.com/frahmantamala/office-hr/internal/company"
	"github.com/frahmantamala/office-hr/internal/dashboard"
	"github.com/frahmantamala/office-hr/internal/employee"
	"github.com/frahmantamala/office-hr/internal/leave"
	"github.com/frahmantamala/office-hr/internal/notification"
	"github.com/frahmantamala/office-hr/internal/permission"
	"github.com/frahmantamala/office-hr/internal/transport/middleware"
	"github.com/frahmantamala/office-hr/internal/transport/swagger"
	"github.com/frahmantamala/office-hr/internal/user"
	"github.com/frahmantamala/office-hr/internal/vault"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *auth.Handler
	RBAC          *auth.RBACAuthorization
	Users         *user.Handler
	Roles         *permission.Handler
	Leaves        *leave.Handler
	Approvals     *approval.Handler
	Notifications *notification.Handler
	Audit         *audit.Handler
	Employees     *employee.Handler
	Vault         *vault.Handler
	Attendance    *attendance.Handler
	Company       *company.Handler
	Dashboard     *dashboard.Handler
	Health        *HealthHandler
}

type RouterOptions struct {
	AllowedOrigins string
	OpenAPIPath    string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions, logger *slog.Logger) {
	rbac := h.RBAC

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	openAPIPath := opts.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/signup", h.Users.Signup)
			sr.Post("/logout", h.Auth.Logout)
			sr.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.With(rbac.Middleware("admin:read")).Get("/roles", h.Roles.ListRoles)

			pr.Route("/users", func(ur chi.Router) {
				ur.With(rbac.Middleware("admin:read")).Get("/", h.Users.ListUsers)
				ur.With(rbac.Middleware("admin:write")).Post("/", h.Users.CreateUser)
				ur.With(rbac.Middleware("admin:read")).Get("/{id}", h.Users.GetUser)
				ur.With(rbac.Middleware("admin:write")).Put("/{id}", h.Users.UpdateUser)
				ur.With(rbac.Middleware("admin:write")).Patch("/{id}/status", h.Users.SetUserStatus)
			})

			// Deciding is authorized per entity type by the approval workflow.
			pr.Route("/leaves", func(lr chi.Router) {
				lr.With(rbac.Middleware("leaves:read")).Get("/", h.Leaves.ListLeaves)
				lr.With(rbac.Middleware("leaves:write")).Post("/", h.Leaves.CreateLeave)
				lr.With(rbac.Middleware("leaves:read")).Get("/{id}", h.Leaves.GetLeave)
				lr.Put("/{id}/approve", h.Leaves.ApproveLeave)
				lr.Put("/{id}/reject", h.Leaves.RejectLeave)
			})

			pr.Route("/approvals", func(ar chi.Router) {
				ar.With(rbac.Middleware("admin:read")).Get("/", h.Approvals.ListApprovals)
				ar.With(rbac.Middleware("admin:write")).Post("/", h.Approvals.CreateApproval)
				ar.With(rbac.Middleware("admin:read")).Get("/{id}", h.Approvals.GetApproval)
				ar.Put("/{id}/approve", h.Approvals.ApproveApproval)
				ar.Put("/{id}/reject", h.Approvals.RejectApproval)
				ar.Post("/{id}/replay", h.Approvals.ReplayApproval)
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notifications.ListNotifications)
				nr.Put("/read-all", h.Notifications.MarkAllRead)
				nr.Put("/{id}/read", h.Notifications.MarkRead)
			})

			pr.With(rbac.Middleware("audit:read")).Get("/audit", h.Audit.ListAudit)

			pr.Route("/employees", func(er chi.Router) {
				er.With(rbac.Middleware("employees:read")).Get("/", h.Employees.ListEmployees)
				er.With(rbac.Middleware("employees:write")).Post("/", h.Employees.CreateEmployee)
				er.With(rbac.Middleware("employees:read")).Get("/{id}", h.Employees.GetEmployee)
				er.With(rbac.Middleware("employees:write")).Put("/{id}", h.Employees.UpdateEmployee)
				er.With(rbac.Middleware("employees:write")).Delete("/{id}", h.Employees.DeleteEmployee)
			})

			// Ownership of single items is checked by the vault service.
			pr.Route("/vault", func(vr chi.Router) {
				vr.With(rbac.Middleware("vault:read")).Get("/", h.Vault.ListItems)
				vr.With(rbac.Middleware("vault:write")).Post("/", h.Vault.CreateItem)
				vr.With(rbac.Middleware("vault:read")).Get("/{id}", h.Vault.GetItem)
				vr.With(rbac.Middleware("vault:write")).Put("/{id}", h.Vault.UpdateItem)
				vr.With(rbac.Middleware("vault:write")).Put("/{id}/reset-secret", h.Vault.ResetSecret)
				vr.With(rbac.Middleware("vault:write")).Delete("/{id}", h.Vault.DeleteItem)
			})

			pr.Route("/attendance", func(atr chi.Router) {
				atr.With(rbac.Middleware("attendance:read")).Get("/", h.Attendance.ListAttendance)
				atr.With(rbac.Middleware("attendance:write")).Post("/", h.Attendance.UpsertAttendance)
			})

			pr.With(rbac.Middleware("admin:read")).Get("/company", h.Company.GetCompany)
			pr.With(rbac.Middleware("admin:write")).Put("/company", h.Company.SaveCompany)

			pr.Get("/dashboard/summary", h.Dashboard.GetSummary)
		})
	})
}
