package company

import (
	"strings"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/core/common/validation"
)

type SaveCompanyDTO struct {
	Name      string `json:"name"`
	LegalName string `json:"legal_name"`
	GSTIN     string `json:"gstin"`
	PAN       string `json:"pan"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Currency  string `json:"currency"`
	Timezone  string `json:"timezone"`
}

func (dto *SaveCompanyDTO) Normalize() {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.LegalName = strings.TrimSpace(dto.LegalName)
	dto.GSTIN = strings.ToUpper(strings.TrimSpace(dto.GSTIN))
	dto.PAN = strings.ToUpper(strings.TrimSpace(dto.PAN))
	dto.Address = strings.TrimSpace(dto.Address)
	dto.Phone = strings.TrimSpace(dto.Phone)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Currency = strings.ToUpper(strings.TrimSpace(dto.Currency))
	dto.Timezone = strings.TrimSpace(dto.Timezone)
}

func (dto SaveCompanyDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MinLength(2).MaxLength(120)
	v.Field("legal_name", dto.LegalName).MaxLength(200)
	v.Field("gstin", dto.GSTIN).MaxLength(15)
	v.Field("pan", dto.PAN).MaxLength(10)
	v.Field("address", dto.Address).MaxLength(500)
	v.Field("phone", dto.Phone).MaxLength(32)
	v.Field("email", dto.Email).Email()
	v.Field("currency", dto.Currency).Custom(func(value interface{}) *internal.AppError {
		s, _ := value.(string)
		if s == "" || (len(s) == 3 && strings.Trim(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") == "") {
			return nil
		}
		return internal.NewValidationFieldError("currency", "currency must be a three letter ISO 4217 code", internal.ErrCodeValidationFailed)
	})
	v.Field("timezone", dto.Timezone).Custom(func(value interface{}) *internal.AppError {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := time.LoadLocation(s); err != nil {
			return internal.NewValidationFieldError("timezone", "timezone must be an IANA zone name", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
