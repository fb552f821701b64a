package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const cancelKey = "sqlstore:cancel"

// OperationTimeout bounds every create, query, update, delete and raw exec
// with a per-statement deadline derived from the statement's context. Row
// and Rows are left alone because their results outlive the callback chain.
func OperationTimeout(d time.Duration) gorm.Plugin {
	return &operationTimeout{timeout: d}
}

type operationTimeout struct {
	timeout time.Duration
}

func (p *operationTimeout) Name() string {
	return "sqlstore:operation_timeout"
}

func (p *operationTimeout) Initialize(db *gorm.DB) error {
	if p.timeout <= 0 {
		return nil
	}
	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("sqlstore:timeout_create", p.begin); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("sqlstore:timeout_create_end", p.end); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("sqlstore:timeout_query", p.begin); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("sqlstore:timeout_query_end", p.end); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("sqlstore:timeout_update", p.begin); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("sqlstore:timeout_update_end", p.end); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("sqlstore:timeout_delete", p.begin); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("sqlstore:timeout_delete_end", p.end); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("sqlstore:timeout_raw", p.begin); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("sqlstore:timeout_raw_end", p.end)
}

func (p *operationTimeout) begin(db *gorm.DB) {
	parent := db.Statement.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	db.Statement.Context = ctx
	db.InstanceSet(cancelKey, cancel)
}

func (p *operationTimeout) end(db *gorm.DB) {
	if v, ok := db.InstanceGet(cancelKey); ok {
		if cancel, ok := v.(context.CancelFunc); ok {
			cancel()
		}
	}
}
