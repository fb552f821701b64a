package company

import (
	"time"

	"github.com/frahmantamala/office-hr/internal"
	companyDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/company"
)

var (
	ErrCompanyNotFound   = internal.NewNotFoundError("Company not found", internal.ErrCodeCompanyNotFound)
	ErrCompanyNameExists = internal.NewConflictError("Company name already exists", internal.ErrCodeCompanyNameExists).
				WithDetails(map[string]string{"field": "name"})
)

// Profile describes the caller's own company. There is exactly one per
// tenant and it is addressed by company_id, never by a path id.
type Profile struct {
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	LegalName string    `json:"legal_name,omitempty"`
	GSTIN     string    `json:"gstin,omitempty"`
	PAN       string    `json:"pan,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToDataModel(p *Profile) *companyDatamodel.Profile {
	return &companyDatamodel.Profile{
		CompanyID: p.CompanyID,
		Name:      p.Name,
		LegalName: p.LegalName,
		GSTIN:     p.GSTIN,
		PAN:       p.PAN,
		Address:   p.Address,
		Phone:     p.Phone,
		Email:     p.Email,
		Currency:  p.Currency,
		Timezone:  p.Timezone,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromDataModel(p *companyDatamodel.Profile) *Profile {
	return &Profile{
		CompanyID: p.CompanyID,
		Name:      p.Name,
		LegalName: p.LegalName,
		GSTIN:     p.GSTIN,
		PAN:       p.PAN,
		Address:   p.Address,
		Phone:     p.Phone,
		Email:     p.Email,
		Currency:  p.Currency,
		Timezone:  p.Timezone,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Fields lists the columns a save overwrites; created_at is kept.
func Fields(p *companyDatamodel.Profile) map[string]interface{} {
	return map[string]interface{}{
		"name":       p.Name,
		"legal_name": p.LegalName,
		"gstin":      p.GSTIN,
		"pan":        p.PAN,
		"address":    p.Address,
		"phone":      p.Phone,
		"email":      p.Email,
		"currency":   p.Currency,
		"timezone":   p.Timezone,
		"updated_at": p.UpdatedAt,
	}
}
