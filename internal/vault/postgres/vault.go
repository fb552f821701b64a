package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	vaultDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/vault"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
	"github.com/frahmantamala/office-hr/internal/vault"
)

type VaultRepository struct {
	db *gorm.DB
}

func NewVaultRepository(db *gorm.DB) vault.RepositoryAPI {
	return &VaultRepository{db: db}
}

func (r *VaultRepository) Create(ctx context.Context, item *vaultDatamodel.Item) error {
	return sqlstore.Wrap("vault_items.insert", r.db.WithContext(ctx).Create(item).Error)
}

func (r *VaultRepository) GetByID(ctx context.Context, companyID, id string) (*vaultDatamodel.Item, error) {
	var item vaultDatamodel.Item
	err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, vault.ErrItemNotFound
		}
		return nil, sqlstore.Wrap("vault_items.find", err)
	}
	return &item, nil
}

func (r *VaultRepository) List(ctx context.Context, companyID string, f vault.ListFilter) ([]*vaultDatamodel.Item, int64, error) {
	q := r.db.WithContext(ctx).Model(&vaultDatamodel.Item{}).Where("company_id = ?", companyID)
	if f.OwnerUserID != "" {
		q = q.Where("owner_user_id = ?", f.OwnerUserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, sqlstore.Wrap("vault_items.count", err)
	}

	var out []*vaultDatamodel.Item
	if err := sqlstore.Paginate(q, f.Offset, f.Limit).Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, 0, sqlstore.Wrap("vault_items.list", err)
	}
	return out, total, nil
}

func (r *VaultRepository) Update(ctx context.Context, companyID, id string, changes vault.Changes, at time.Time) (bool, error) {
	fields := changes.Fields()
	fields["updated_at"] = at

	res := r.db.WithContext(ctx).Model(&vaultDatamodel.Item{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Updates(fields)
	if res.Error != nil {
		return false, sqlstore.Wrap("vault_items.update", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *VaultRepository) Delete(ctx context.Context, companyID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).Delete(&vaultDatamodel.Item{})
	if res.Error != nil {
		return false, sqlstore.Wrap("vault_items.delete", res.Error)
	}
	return res.RowsAffected == 1, nil
}
