package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	"github.com/frahmantamala/office-hr/internal/attendance"
	"github.com/frahmantamala/office-hr/internal/audit"
	"github.com/frahmantamala/office-hr/internal/auth"
	"github.com/frahmantamala/office-hr/internal/company"
	"github.com/frahmantamala/office-hr/internal/core/events"
	"github.com/frahmantamala/office-hr/internal/core/security"
	"github.com/frahmantamala/office-hr/internal/dashboard"
	"github.com/frahmantamala/office-hr/internal/employee"
	"github.com/frahmantamala/office-hr/internal/leave"
	"github.com/frahmantamala/office-hr/internal/notification"
	"github.com/frahmantamala/office-hr/internal/permission"
	"github.com/frahmantamala/office-hr/internal/transport"
	"github.com/frahmantamala/office-hr/internal/transport/rest"
	"github.com/frahmantamala/office-hr/internal/user"
	"github.com/frahmantamala/office-hr/internal/vault"
	applog "github.com/frahmantamala/office-hr/pkg/logger"
)

// application is the wired service graph over one set of repositories.
type application struct {
	Router   *chi.Mux
	Bus      *events.EventBus
	FanOut   *notification.FanOut
	Matrix   *permission.Matrix
	Users    *user.Service
	Workflow *approval.Workflow
	Inbox    *notification.Service

	repos  *repositories
	logger *slog.Logger
}

func newPermissionMatrix(cfg internal.PermissionsConfig, logger *slog.Logger) *permission.Matrix {
	var opts []permission.Option
	if cfg.UnknownRole == internal.UnknownRoleDeny {
		opts = append(opts, permission.FailClosed())
	} else {
		logger.Warn("unrecognized roles fall back to EMPLOYEE permissions; set permissions.unknown_role=deny to fail closed")
	}
	return permission.NewMatrix(cfg.Roles, opts...)
}

func newApplication(cfg *internal.Config, repos *repositories, logger *slog.Logger) *application {
	logger = applog.Contextual(logger)
	matrix := newPermissionMatrix(cfg.Permissions, logger)
	hasher := security.NewHasher(cfg.Security.SecretIterations)
	bus := events.NewEventBus(logger)

	audit.NewWriter(repos.audit, logger).RegisterEventHandlers(bus)
	recorder := audit.NewRecorder(bus, logger)

	notifications := notification.NewService(repos.notifications, logger)

	registry := approval.NewRegistry(approval.NewStatusPropagationHandler(bus, logger)).
		RegisterManaged(approval.EntityLeave, leave.NewDecisionHandler(repos.leaves, notifications, logger)).
		RegisterManaged(approval.EntityUserSignup, user.NewSignupHandler(repos.users, notifications, hasher, cfg.Security.TempCredentialBytes, logger))
	workflow := approval.NewWorkflow(repos.approvals, registry, approval.DefaultAccessPolicy(matrix), recorder, logger)

	users := user.NewService(repos.users, workflow, matrix, hasher, recorder, logger)
	leaves := leave.NewService(repos.leaves, workflow, bus, recorder, logger)

	fanOut := notification.NewFanOut(notification.FanOutConfig{
		Workers:   cfg.Notification.FanOutWorkers,
		QueueSize: cfg.Notification.QueueSize,
		PageSize:  cfg.Notification.PageSize,
	}, users, notifications, logger)
	fanOut.RegisterEventHandlers(bus, permission.RoleHR)

	employees := employee.NewService(repos.employees, users, recorder, logger)
	records := attendance.NewService(repos.attendance, recorder, logger)

	sessions := auth.NewService(repos.sessions, repos.users, repos.employees, hasher, cfg.Security.SessionTTL, recorder, logger)

	base := transport.NewBaseHandler(logger)
	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:          auth.NewHandler(base, sessions),
		RBAC:          auth.NewRBACAuthorization(matrix, logger),
		Users:         user.NewHandler(base, users),
		Roles:         permission.NewHandler(base, matrix),
		Leaves:        leave.NewHandler(base, leaves),
		Approvals:     approval.NewHandler(base, workflow),
		Notifications: notification.NewHandler(base, notifications),
		Audit:         audit.NewHandler(base, audit.NewService(repos.audit, logger)),
		Employees:     employee.NewHandler(base, employees),
		Vault:         vault.NewHandler(base, vault.NewService(repos.vault, hasher, recorder, logger)),
		Attendance:    attendance.NewHandler(base, records),
		Company:       company.NewHandler(base, company.NewService(repos.companies, recorder, logger)),
		Dashboard:     dashboard.NewHandler(base, dashboard.NewService(employees, records, leaves, logger)),
		Health:        rest.NewHealthHandler(repos.pingers),
	}, rest.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins}, logger)

	return &application{
		Router:   router,
		Bus:      bus,
		FanOut:   fanOut,
		Matrix:   matrix,
		Users:    users,
		Workflow: workflow,
		Inbox:    notifications,
		repos:    repos,
		logger:   logger,
	}
}

// Shutdown lets in-flight events and fan-out jobs finish, then releases the
// store.
func (a *application) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Bus.Drain(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.FanOut.Wait(ctx); err != nil {
		errs = append(errs, err)
	}
	a.FanOut.Shutdown()
	// the fan-out may have published audit entries while finishing
	if err := a.Bus.Drain(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.repos.close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
