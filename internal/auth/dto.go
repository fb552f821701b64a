package auth

import (
	"strings"
	"time"

	"github.com/frahmantamala/office-hr/internal/core/common/validation"
)

// LoginDTO identifies the account by email or employee code within one
// company.
type LoginDTO struct {
	CompanyID  string `json:"company_id"`
	Identifier string `json:"identifier"`
	Pin        string `json:"pin"`
}

func (d *LoginDTO) Normalize() {
	d.CompanyID = strings.TrimSpace(d.CompanyID)
	d.Identifier = strings.TrimSpace(d.Identifier)
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("company_id", d.CompanyID).Required()
	v.Field("identifier", d.Identifier).Required().MaxLength(254)
	v.Field("pin", d.Pin).Required().MaxLength(128)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ClientMeta is stored on the session and refreshed on every request.
type ClientMeta struct {
	UserAgent string
	IP        string
}

type SessionUser struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	RoleKey   string `json:"role_key"`
	CompanyID string `json:"company_id"`
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        SessionUser `json:"user"`
}
