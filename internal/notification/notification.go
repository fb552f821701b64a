package notification

import (
	"time"

	"github.com/frahmantamala/office-hr/internal"
	notificationDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/notification"
)

const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarn    = "warn"
)

var (
	ErrNotificationNotFound = internal.NewNotFoundError("Notification not found", internal.ErrCodeNotificationNotFound)
	ErrDuplicate            = internal.NewConflictError("Notification already delivered", internal.ErrCodeNotificationDuplicate)
)

type Notification struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification is the dispatch input. SourceKey, when set, makes delivery
// idempotent per recipient.
type NewNotification struct {
	CompanyID string
	UserID    string
	Title     string
	Message   string
	Type      string
	SourceKey string
}

func FromDataModel(n *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:        n.ID,
		CompanyID: n.CompanyID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
