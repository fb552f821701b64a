package vault

import (
	"strings"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/core/common/validation"
)

const (
	maxTags      = 20
	maxTagLength = 40
)

type CreateItemDTO struct {
	Title    string   `json:"title"`
	Username string   `json:"username"`
	URL      string   `json:"url"`
	Password string   `json:"password"`
	Notes    string   `json:"notes"`
	Tags     []string `json:"tags"`
}

func (dto *CreateItemDTO) Normalize() {
	dto.Title = strings.TrimSpace(dto.Title)
	dto.Username = strings.TrimSpace(dto.Username)
	dto.URL = strings.TrimSpace(dto.URL)
	dto.Tags = normalizeTags(dto.Tags)
}

func (dto CreateItemDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("title", dto.Title).Required().MinLength(2).MaxLength(120)
	v.Field("username", dto.Username).MaxLength(120)
	v.Field("url", dto.URL).MaxLength(500)
	v.Field("password", dto.Password).Required().MaxLength(500)
	v.Field("notes", dto.Notes).MaxLength(4000)
	v.Field("tags", dto.Tags).Custom(checkTags)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateItemDTO changes the descriptive fields only; secrets go through
// ResetSecretDTO.
type UpdateItemDTO struct {
	Title    *string   `json:"title"`
	Username *string   `json:"username"`
	URL      *string   `json:"url"`
	Tags     *[]string `json:"tags"`
}

func (dto *UpdateItemDTO) Normalize() {
	for _, p := range []*string{dto.Title, dto.Username, dto.URL} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if dto.Tags != nil {
		tags := normalizeTags(*dto.Tags)
		dto.Tags = &tags
	}
}

func (dto UpdateItemDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Title != nil {
		v.Field("title", *dto.Title).Required().MinLength(2).MaxLength(120)
	}
	if dto.Username != nil {
		v.Field("username", *dto.Username).MaxLength(120)
	}
	if dto.URL != nil {
		v.Field("url", *dto.URL).MaxLength(500)
	}
	if dto.Tags != nil {
		v.Field("tags", *dto.Tags).Custom(checkTags)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ResetSecretDTO replaces the password, the notes, or both. An empty notes
// value clears them.
type ResetSecretDTO struct {
	Password *string `json:"password"`
	Notes    *string `json:"notes"`
}

func (dto ResetSecretDTO) Validate() error {
	if dto.Password == nil && dto.Notes == nil {
		return internal.NewValidationFieldError("password", "password or notes is required", internal.ErrCodeValidationFailed)
	}
	v := validation.NewValidator()
	if dto.Password != nil {
		v.Field("password", *dto.Password).Required().MaxLength(500)
	}
	if dto.Notes != nil {
		v.Field("notes", *dto.Notes).MaxLength(4000)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ItemsResponse struct {
	Items  []*Item `json:"items"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// normalizeTags trims, lowercases and de-duplicates, keeping first-seen order.
func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func checkTags(value interface{}) *internal.AppError {
	tags, _ := value.([]string)
	if len(tags) > maxTags {
		return internal.NewValidationFieldError("tags", "tags must not have more than 20 entries", internal.ErrCodeValidationFailed)
	}
	for _, t := range tags {
		if len(t) > maxTagLength {
			return internal.NewValidationFieldError("tags", "each tag must not exceed 40 characters", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}
