package vault

import (
	"time"

	"github.com/frahmantamala/office-hr/internal"
	vaultDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/vault"
	"github.com/frahmantamala/office-hr/internal/core/security"
)

// Mask stands in for a stored secret in every response.
const Mask = "********"

var (
	ErrItemNotFound = internal.NewNotFoundError("Vault item not found", internal.ErrCodeVaultItemNotFound)
	ErrNoAccess     = internal.NewForbiddenError("You do not have access to this vault item", internal.ErrCodeVaultAccessDenied)
)

// Item is the outward view of a vault entry. Password and Notes only ever
// carry Mask.
type Item struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	OwnerUserID string    `json:"owner_user_id"`
	Title       string    `json:"title"`
	Username    string    `json:"username,omitempty"`
	URL         string    `json:"url,omitempty"`
	Tags        []string  `json:"tags"`
	Password    string    `json:"password"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(dm *vaultDatamodel.Item) *Item {
	tags := []string(dm.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &Item{
		ID:          dm.ID,
		CompanyID:   dm.CompanyID,
		OwnerUserID: dm.OwnerUserID,
		Title:       dm.Title,
		Username:    dm.Username,
		URL:         dm.URL,
		Tags:        tags,
		Password:    mask(dm.PasswordHash),
		Notes:       mask(dm.NotesHash),
		CreatedAt:   dm.CreatedAt,
		UpdatedAt:   dm.UpdatedAt,
	}
}

func mask(hash string) string {
	if hash == "" {
		return ""
	}
	return Mask
}

func setPassword(dm *vaultDatamodel.Item, h security.HashedSecret) {
	dm.PasswordHash = h.Hash
	dm.PasswordSalt = h.Salt
	dm.PasswordIterations = h.Iterations
}

func setNotes(dm *vaultDatamodel.Item, h security.HashedSecret) {
	dm.NotesHash = h.Hash
	dm.NotesSalt = h.Salt
	dm.NotesIterations = h.Iterations
}
