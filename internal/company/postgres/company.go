package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/office-hr/internal/company"
	companyDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/company"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Get(ctx context.Context, companyID string) (*companyDatamodel.Profile, error) {
	var p companyDatamodel.Profile
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, sqlstore.Wrap("companies.find", err)
	}
	return &p, nil
}

func (r *CompanyRepository) Save(ctx context.Context, p *companyDatamodel.Profile) (bool, error) {
	res := r.db.WithContext(ctx).Model(&companyDatamodel.Profile{}).
		Where("company_id = ?", p.CompanyID).
		Updates(company.Fields(p))
	if res.Error != nil {
		return false, r.mapErr("companies.update", res.Error)
	}
	if res.RowsAffected == 1 {
		return false, nil
	}

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return false, r.mapErr("companies.insert", err)
	}
	return true, nil
}

func (r *CompanyRepository) mapErr(op string, err error) error {
	if sqlstore.IsDuplicateKey(err) {
		return company.ErrCompanyNameExists
	}
	return sqlstore.Wrap(op, err)
}
