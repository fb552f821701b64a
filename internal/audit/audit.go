// Package audit keeps the append-only trail of who did what to which entity.
// Records are published on the event bus and persisted by a subscriber so a
// slow or failing store never delays the request that produced them.
package audit

import (
	"context"
	"time"

	auditDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/audit"
)

type Entry struct {
	ID          string         `json:"id"`
	TS          time.Time      `json:"ts"`
	RequestID   string         `json:"request_id,omitempty"`
	CompanyID   string         `json:"company_id"`
	ActorUserID string         `json:"actor_user_id,omitempty"`
	ActorRole   string         `json:"actor_role,omitempty"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func FromDataModel(dm *auditDatamodel.Entry) *Entry {
	return &Entry{
		ID:          dm.ID,
		TS:          dm.TS,
		RequestID:   dm.RequestID,
		CompanyID:   dm.CompanyID,
		ActorUserID: dm.ActorUserID,
		ActorRole:   dm.ActorRole,
		Action:      dm.Action,
		EntityType:  dm.EntityType,
		EntityID:    dm.EntityID,
		Metadata:    dm.Metadata,
	}
}

type ListFilter struct {
	EntityType string
	Action     string
	Offset     int
	Limit      int
}

type RepositoryAPI interface {
	Insert(ctx context.Context, e *auditDatamodel.Entry) error
	// List returns entries of one company, newest first.
	List(ctx context.Context, companyID string, filter ListFilter) ([]*auditDatamodel.Entry, int64, error)
}
