package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/office-hr/internal/approval"
	approvalDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/approval"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
)

type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) approval.RepositoryAPI {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDatamodel.Approval) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if sqlstore.IsDuplicateKey(err) {
			return approval.ErrApprovalExists
		}
		return sqlstore.Wrap("approvals.insert", err)
	}
	return nil
}

func (r *ApprovalRepository) GetByID(ctx context.Context, companyID, id string) (*approvalDatamodel.Approval, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID))
}

func (r *ApprovalRepository) GetByEntity(ctx context.Context, companyID, entityType, entityID string) (*approvalDatamodel.Approval, error) {
	return r.first(r.db.WithContext(ctx).
		Where("company_id = ? AND entity_type = ? AND entity_id = ?", companyID, entityType, entityID))
}

func (r *ApprovalRepository) first(q *gorm.DB) (*approvalDatamodel.Approval, error) {
	var a approvalDatamodel.Approval
	if err := q.First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approval.ErrApprovalNotFound
		}
		return nil, sqlstore.Wrap("approvals.find", err)
	}
	return &a, nil
}

func (r *ApprovalRepository) List(ctx context.Context, companyID string, f approval.ListFilter) ([]*approvalDatamodel.Approval, int64, error) {
	q := r.db.WithContext(ctx).Model(&approvalDatamodel.Approval{}).Where("company_id = ?", companyID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, sqlstore.Wrap("approvals.count", err)
	}

	var out []*approvalDatamodel.Approval
	if err := sqlstore.Paginate(q, f.Offset, f.Limit).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, sqlstore.Wrap("approvals.list", err)
	}
	return out, total, nil
}

// DecideIfPending issues one UPDATE guarded by status = 'pending'; a single
// affected row means this caller won.
func (r *ApprovalRepository) DecideIfPending(ctx context.Context, companyID, id, status, decidedBy, comment string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&approvalDatamodel.Approval{}).
		Where("id = ? AND company_id = ? AND status = ?", id, companyID, string(approval.StatusPending)).
		Updates(map[string]interface{}{
			"status":             status,
			"decided_by_user_id": decidedBy,
			"decision_comment":   comment,
			"updated_at":         at,
		})
	if res.Error != nil {
		return false, sqlstore.Wrap("approvals.decide", res.Error)
	}
	return res.RowsAffected == 1, nil
}
