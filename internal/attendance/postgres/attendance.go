package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/office-hr/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/attendance"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Upsert(ctx context.Context, rec *attendanceDatamodel.Record) (*attendanceDatamodel.Record, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "date"}, {Name: "employee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"employee_name", "department", "status", "check_in", "check_out", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		return nil, sqlstore.Wrap("attendance.upsert", err)
	}

	var stored attendanceDatamodel.Record
	err = r.db.WithContext(ctx).
		Where("company_id = ? AND date = ? AND employee_id = ?", rec.CompanyID, rec.Date, rec.EmployeeID).
		First(&stored).Error
	if err != nil {
		return nil, sqlstore.Wrap("attendance.reload", err)
	}
	return &stored, nil
}

func (r *AttendanceRepository) List(ctx context.Context, companyID string, f attendance.ListFilter) ([]*attendanceDatamodel.Record, int64, error) {
	q := r.db.WithContext(ctx).Model(&attendanceDatamodel.Record{}).Where("company_id = ?", companyID)
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, sqlstore.Wrap("attendance.count", err)
	}

	var out []*attendanceDatamodel.Record
	if err := sqlstore.Paginate(q, f.Offset, f.Limit).Order("date DESC").Order("employee_name ASC").Find(&out).Error; err != nil {
		return nil, 0, sqlstore.Wrap("attendance.list", err)
	}
	return out, total, nil
}
