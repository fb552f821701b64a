package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	employeeDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/employee"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
	"github.com/frahmantamala/office-hr/internal/employee"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if sqlstore.IsDuplicateKey(err) {
			return employee.ErrEmployeeCodeExists
		}
		return sqlstore.Wrap("employees.insert", err)
	}
	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, companyID, id string) (*employeeDatamodel.Employee, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID))
}

func (r *EmployeeRepository) FindByCode(ctx context.Context, companyID, code string) (*employeeDatamodel.Employee, error) {
	return r.first(r.db.WithContext(ctx).Where("company_id = ? AND employee_code = ?", companyID, code))
}

func (r *EmployeeRepository) first(q *gorm.DB) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	if err := q.First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, sqlstore.Wrap("employees.find", err)
	}
	return &e, nil
}

func (r *EmployeeRepository) List(ctx context.Context, companyID string, f employee.ListFilter) ([]*employeeDatamodel.Employee, int64, error) {
	q := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).Where("company_id = ?", companyID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	if f.JoinedSince != "" {
		q = q.Where("join_date <> '' AND join_date >= ?", f.JoinedSince)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, sqlstore.Wrap("employees.count", err)
	}

	var out []*employeeDatamodel.Employee
	if err := sqlstore.Paginate(q, f.Offset, f.Limit).Order("full_name ASC").Find(&out).Error; err != nil {
		return nil, 0, sqlstore.Wrap("employees.list", err)
	}
	return out, total, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, companyID, id string, changes employee.Changes, at time.Time) (bool, error) {
	fields := changes.Fields()
	fields["updated_at"] = at

	res := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Updates(fields)
	if res.Error != nil {
		return false, sqlstore.Wrap("employees.update", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, companyID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).
		Delete(&employeeDatamodel.Employee{})
	if res.Error != nil {
		return false, sqlstore.Wrap("employees.delete", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *EmployeeRepository) ListBirthDates(ctx context.Context, companyID string) ([]string, error) {
	var dobs []string
	err := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).
		Where("company_id = ? AND status = ? AND dob <> ''", companyID, employee.StatusActive).
		Pluck("dob", &dobs).Error
	if err != nil {
		return nil, sqlstore.Wrap("employees.birth_dates", err)
	}
	return dobs, nil
}
