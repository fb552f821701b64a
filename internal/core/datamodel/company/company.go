package company

import "time"

// Profile is the single company record of a tenant, keyed by company_id.
type Profile struct {
	CompanyID string    `gorm:"column:company_id;primaryKey" bson:"_id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_companies_name" bson:"name"`
	LegalName string    `gorm:"column:legal_name" bson:"legal_name,omitempty"`
	GSTIN     string    `gorm:"column:gstin" bson:"gstin,omitempty"`
	PAN       string    `gorm:"column:pan" bson:"pan,omitempty"`
	Address   string    `gorm:"column:address" bson:"address,omitempty"`
	Phone     string    `gorm:"column:phone" bson:"phone,omitempty"`
	Email     string    `gorm:"column:email" bson:"email,omitempty"`
	Currency  string    `gorm:"column:currency" bson:"currency,omitempty"`
	Timezone  string    `gorm:"column:timezone" bson:"timezone,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" bson:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" bson:"updated_at"`
}

func (Profile) TableName() string {
	return "companies"
}
