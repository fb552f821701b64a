package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/office-hr/internal/audit"
	auditDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/audit"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
)

// AuditRepository reads and appends audit_logs with plain SQL over sqlx.
type AuditRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewAuditRepository(db *sqlx.DB, timeout time.Duration) audit.RepositoryAPI {
	return &AuditRepository{db: db, timeout: timeout}
}

func (r *AuditRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

type auditRow struct {
	ID          string    `db:"id"`
	TS          time.Time `db:"ts"`
	RequestID   string    `db:"request_id"`
	CompanyID   string    `db:"company_id"`
	ActorUserID string    `db:"actor_user_id"`
	ActorRole   string    `db:"actor_role"`
	Action      string    `db:"action"`
	EntityType  string    `db:"entity_type"`
	EntityID    string    `db:"entity_id"`
	Metadata    []byte    `db:"metadata"`
}

const insertAudit = `
INSERT INTO audit_logs (id, ts, request_id, company_id, actor_user_id, actor_role, action, entity_type, entity_id, metadata)
VALUES (:id, :ts, :request_id, :company_id, :actor_user_id, :actor_role, :action, :entity_type, :entity_id, :metadata)`

func (r *AuditRepository) Insert(ctx context.Context, e *auditDatamodel.Entry) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("audit_logs.insert: encode metadata: %w", err)
	}
	row := auditRow{
		ID:          e.ID,
		TS:          e.TS,
		RequestID:   e.RequestID,
		CompanyID:   e.CompanyID,
		ActorUserID: e.ActorUserID,
		ActorRole:   e.ActorRole,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Metadata:    metadata,
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()
	_, err = r.db.NamedExecContext(ctx, insertAudit, row)
	return sqlstore.Wrap("audit_logs.insert", err)
}

func (r *AuditRepository) List(ctx context.Context, companyID string, f audit.ListFilter) ([]*auditDatamodel.Entry, int64, error) {
	where := []string{"company_id = ?"}
	args := []interface{}{companyID}
	if f.EntityType != "" {
		where = append(where, "entity_type = ?")
		args = append(args, f.EntityType)
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, f.Action)
	}
	clause := strings.Join(where, " AND ")

	ctx, cancel := r.bound(ctx)
	defer cancel()

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM audit_logs WHERE "+clause), args...); err != nil {
		return nil, 0, sqlstore.Wrap("audit_logs.count", err)
	}

	query := "SELECT id, ts, request_id, company_id, actor_user_id, actor_role, action, entity_type, entity_id, metadata FROM audit_logs WHERE " +
		clause + " ORDER BY ts DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, f.Offset)
	}

	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, 0, sqlstore.Wrap("audit_logs.list", err)
	}

	out := make([]*auditDatamodel.Entry, 0, len(rows))
	for _, row := range rows {
		e := &auditDatamodel.Entry{
			ID:          row.ID,
			TS:          row.TS,
			RequestID:   row.RequestID,
			CompanyID:   row.CompanyID,
			ActorUserID: row.ActorUserID,
			ActorRole:   row.ActorRole,
			Action:      row.Action,
			EntityType:  row.EntityType,
			EntityID:    row.EntityID,
		}
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &e.Metadata); err != nil {
				return nil, 0, fmt.Errorf("audit_logs.list: decode metadata of %s: %w", row.ID, err)
			}
		}
		out = append(out, e)
	}
	return out, total, nil
}
