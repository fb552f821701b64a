package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	approvalMongo "github.com/frahmantamala/office-hr/internal/approval/mongo"
	approvalPostgres "github.com/frahmantamala/office-hr/internal/approval/postgres"
	"github.com/frahmantamala/office-hr/internal/audit"
	auditMongo "github.com/frahmantamala/office-hr/internal/audit/mongo"
	auditPostgres "github.com/frahmantamala/office-hr/internal/audit/postgres"
	"github.com/frahmantamala/office-hr/internal/attendance"
	attendanceMongo "github.com/frahmantamala/office-hr/internal/attendance/mongo"
	attendancePostgres "github.com/frahmantamala/office-hr/internal/attendance/postgres"
	"github.com/frahmantamala/office-hr/internal/auth"
	authMongo "github.com/frahmantamala/office-hr/internal/auth/mongo"
	authPostgres "github.com/frahmantamala/office-hr/internal/auth/postgres"
	"github.com/frahmantamala/office-hr/internal/company"
	companyMongo "github.com/frahmantamala/office-hr/internal/company/mongo"
	companyPostgres "github.com/frahmantamala/office-hr/internal/company/postgres"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
	"github.com/frahmantamala/office-hr/internal/employee"
	employeeMongo "github.com/frahmantamala/office-hr/internal/employee/mongo"
	employeePostgres "github.com/frahmantamala/office-hr/internal/employee/postgres"
	"github.com/frahmantamala/office-hr/internal/leave"
	leaveMongo "github.com/frahmantamala/office-hr/internal/leave/mongo"
	leavePostgres "github.com/frahmantamala/office-hr/internal/leave/postgres"
	"github.com/frahmantamala/office-hr/internal/notification"
	notificationMongo "github.com/frahmantamala/office-hr/internal/notification/mongo"
	notificationPostgres "github.com/frahmantamala/office-hr/internal/notification/postgres"
	"github.com/frahmantamala/office-hr/internal/transport/rest"
	"github.com/frahmantamala/office-hr/internal/user"
	userMongo "github.com/frahmantamala/office-hr/internal/user/mongo"
	userPostgres "github.com/frahmantamala/office-hr/internal/user/postgres"
	"github.com/frahmantamala/office-hr/internal/vault"
	vaultMongo "github.com/frahmantamala/office-hr/internal/vault/mongo"
	vaultPostgres "github.com/frahmantamala/office-hr/internal/vault/postgres"
)

// repositories is the storage half of the dependency graph. Both backends
// fill the same set.
type repositories struct {
	approvals     approval.RepositoryAPI
	leaves        leave.RepositoryAPI
	users         user.RepositoryAPI
	sessions      auth.RepositoryAPI
	notifications notification.RepositoryAPI
	audit         audit.RepositoryAPI
	employees     employee.RepositoryAPI
	vault         vault.RepositoryAPI
	attendance    attendance.RepositoryAPI
	companies     company.RepositoryAPI

	pingers map[string]rest.Pinger
	close   func(ctx context.Context) error
}

func openRepositories(ctx context.Context, cfg internal.DatabaseConfig) (*repositories, error) {
	switch cfg.Driver {
	case internal.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("mongodb: ensure indexes: %w", err)
		}
		return mongoRepositories(client), nil
	case internal.DriverPostgres:
		store, err := sqlstore.Open(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		repos := sqlRepositories(store.Gorm, store.SQLX, store.OperationTimeout)
		repos.pingers = map[string]rest.Pinger{"postgres": store}
		repos.close = func(context.Context) error { return store.Close() }
		return repos, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func mongoRepositories(client *mongodb.Client) *repositories {
	return &repositories{
		approvals:     approvalMongo.NewApprovalRepository(client),
		leaves:        leaveMongo.NewLeaveRepository(client),
		users:         userMongo.NewUserRepository(client),
		sessions:      authMongo.NewSessionRepository(client),
		notifications: notificationMongo.NewNotificationRepository(client),
		audit:         auditMongo.NewAuditRepository(client),
		employees:     employeeMongo.NewEmployeeRepository(client),
		vault:         vaultMongo.NewVaultRepository(client),
		attendance:    attendanceMongo.NewAttendanceRepository(client),
		companies:     companyMongo.NewCompanyRepository(client),
		pingers:       map[string]rest.Pinger{"mongodb": client},
		close:         client.Close,
	}
}

// sqlRepositories serves postgres in production and sqlite in tests.
func sqlRepositories(gdb *gorm.DB, sdb *sqlx.DB, opTimeout time.Duration) *repositories {
	return &repositories{
		approvals:     approvalPostgres.NewApprovalRepository(gdb),
		leaves:        leavePostgres.NewLeaveRepository(gdb),
		users:         userPostgres.NewUserRepository(gdb),
		sessions:      authPostgres.NewSessionRepository(gdb),
		notifications: notificationPostgres.NewNotificationRepository(gdb),
		audit:         auditPostgres.NewAuditRepository(sdb, opTimeout),
		employees:     employeePostgres.NewEmployeeRepository(gdb),
		vault:         vaultPostgres.NewVaultRepository(gdb),
		attendance:    attendancePostgres.NewAttendanceRepository(gdb),
		companies:     companyPostgres.NewCompanyRepository(gdb),
		pingers:       map[string]rest.Pinger{},
		close:         func(context.Context) error { return nil },
	}
}
