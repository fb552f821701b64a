package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
	"github.com/frahmantamala/office-hr/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if sqlstore.IsDuplicateKey(err) {
			return user.ErrEmailExists
		}
		return sqlstore.Wrap("users.insert", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, companyID, id string) (*userDatamodel.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID))
}

func (r *UserRepository) FindByEmail(ctx context.Context, companyID, email string) (*userDatamodel.User, error) {
	return r.first(r.db.WithContext(ctx).Where("company_id = ? AND email = ?", companyID, strings.ToLower(email)))
}

func (r *UserRepository) first(q *gorm.DB) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := q.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, sqlstore.Wrap("users.find", err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, companyID string, f user.ListFilter) ([]*userDatamodel.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("company_id = ?", companyID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoleKey != "" {
		q = q.Where("role_key = ?", f.RoleKey)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, sqlstore.Wrap("users.count", err)
	}

	var out []*userDatamodel.User
	if err := sqlstore.Paginate(q, f.Offset, f.Limit).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, sqlstore.Wrap("users.list", err)
	}
	return out, total, nil
}

func (r *UserRepository) Update(ctx context.Context, companyID, id string, changes user.Changes, at time.Time) (bool, error) {
	fields := changes.Fields()
	fields["updated_at"] = at

	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Updates(fields)
	if res.Error != nil {
		if sqlstore.IsDuplicateKey(res.Error) {
			return false, user.ErrEmailExists
		}
		return false, sqlstore.Wrap("users.update", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *UserRepository) Delete(ctx context.Context, companyID, id string) error {
	err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).
		Delete(&userDatamodel.User{}).Error
	return sqlstore.Wrap("users.delete", err)
}

func (r *UserRepository) ListActiveIDsByRole(ctx context.Context, companyID, role string, offset, limit int) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("company_id = ? AND role_key = ? AND status = ?", companyID, role, user.StatusActive).
		Order("id ASC")

	var ids []string
	if err := sqlstore.Paginate(q, offset, limit).Pluck("id", &ids).Error; err != nil {
		return nil, sqlstore.Wrap("users.list_by_role", err)
	}
	return ids, nil
}
