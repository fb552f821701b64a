// Package sqlstore opens the relational backend and maps its errors onto the
// service taxonomy. gorm serves the repositories; the sqlx handle over the
// same pool serves hand-written queries and health checks.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/office-hr/internal"
)

const driverName = "pgx"

// Store carries both handles. OperationTimeout bounds gorm statements through
// a plugin; sqlx callers apply it themselves.
type Store struct {
	Gorm             *gorm.DB
	SQLX             *sqlx.DB
	OperationTimeout time.Duration
}

func Open(cfg internal.DatabaseConfig) (*Store, error) {
	dbConn, err := sqlx.Connect(driverName, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), Config())
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	if err := gdb.Use(OperationTimeout(cfg.OperationTimeout)); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to install operation timeout: %w", err)
	}

	return &Store{Gorm: gdb, SQLX: dbConn, OperationTimeout: cfg.OperationTimeout}, nil
}

// Config is shared with tests so that duplicate keys surface as
// gorm.ErrDuplicatedKey on every dialect.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.SQLX.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.SQLX.Close()
}

func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Wrap maps connectivity failures onto DatabaseDown and everything else onto
// an Internal error.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	var (
		connErr *pgconn.ConnectError
		netErr  net.Error
	)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) || errors.As(err, &connErr) || errors.As(err, &netErr) {
		return internal.NewDatabaseDownError(fmt.Errorf("%s: %w", op, err))
	}
	return internal.NewInternalError("storage failure", fmt.Errorf("%s: %w", op, err))
}

func Paginate(q *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}
