package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	errors "github.com/frahmantamala/office-hr/internal"
)

// DateLayout is the wire format of calendar dates such as leave start/end.
const DateLayout = "2006-01-02"

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

// Field returns a pointer into the builder; chain calls immediately and do not
// hold it across another Field call.
func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" {
			if len(v) < min {
				message := fmt.Sprintf("%s must be at least %d characters", name, min)
				return errors.NewValidationFieldError(name, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", name, max)
				return errors.NewValidationFieldError(name, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

// OneOf compares case-sensitively; callers normalize first.
func (fv *FieldValidator) OneOf(code errors.ErrorCode, allowed ...string) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		message := fmt.Sprintf("%s must be one of %s", name, strings.Join(allowed, ", "))
		return errors.NewValidationFieldError(name, message, code)
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v {
			return errors.NewValidationFieldError(name, fmt.Sprintf("%s must be a valid email address", name), errors.ErrCodeInvalidEmail)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Date() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return errors.NewValidationFieldError(name, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", name), errors.ErrCodeInvalidDate)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
			} else {
				validationErrors = append(validationErrors, errors.ValidationError{
					Field:   field.FieldName,
					Message: appErr.Message,
					Code:    string(appErr.Code),
				})
			}
			// first failing rule per field is enough
			break
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// ValidateDateRange checks that both dates parse and end is not before start.
func ValidateDateRange(start, end string) *errors.AppError {
	validator := NewValidator()
	validator.Field("start_date", start).Required().Date()
	validator.Field("end_date", end).Required().Date().Custom(func(interface{}) *errors.AppError {
		s, errS := time.Parse(DateLayout, start)
		e, errE := time.Parse(DateLayout, end)
		if errS != nil || errE != nil {
			return nil
		}
		if e.Before(s) {
			return errors.NewValidationFieldError("end_date", "end_date must not be before start_date", errors.ErrCodeInvalidDate)
		}
		return nil
	})
	return validator.Validate()
}
