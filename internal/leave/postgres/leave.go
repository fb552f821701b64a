package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	leaveDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/leave"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
	"github.com/frahmantamala/office-hr/internal/leave"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, l *leaveDatamodel.LeaveRequest) error {
	return sqlstore.Wrap("leaves.insert", r.db.WithContext(ctx).Create(l).Error)
}

func (r *LeaveRepository) GetByID(ctx context.Context, companyID, id string) (*leaveDatamodel.LeaveRequest, error) {
	var l leaveDatamodel.LeaveRequest
	err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrLeaveNotFound
		}
		return nil, sqlstore.Wrap("leaves.find", err)
	}
	return &l, nil
}

func (r *LeaveRepository) List(ctx context.Context, companyID string, f leave.ListFilter) ([]*leaveDatamodel.LeaveRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&leaveDatamodel.LeaveRequest{}).Where("company_id = ?", companyID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, sqlstore.Wrap("leaves.count", err)
	}

	var out []*leaveDatamodel.LeaveRequest
	if err := sqlstore.Paginate(q, f.Offset, f.Limit).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, sqlstore.Wrap("leaves.list", err)
	}
	return out, total, nil
}

func (r *LeaveRepository) SetDecision(ctx context.Context, companyID, id, status, comment string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&leaveDatamodel.LeaveRequest{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Updates(map[string]interface{}{
			"status":           status,
			"approver_comment": comment,
			"updated_at":       at,
		})
	if res.Error != nil {
		return false, sqlstore.Wrap("leaves.set_decision", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *LeaveRepository) Delete(ctx context.Context, companyID, id string) error {
	err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).
		Delete(&leaveDatamodel.LeaveRequest{}).Error
	return sqlstore.Wrap("leaves.delete", err)
}
