package audit

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	auditDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/audit"
	"github.com/frahmantamala/office-hr/internal/core/events"
	"github.com/frahmantamala/office-hr/internal/core/id"
)

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Recorder builds an entry from the request context and hands it to the bus.
// Record never fails the caller; publish errors are logged.
type Recorder struct {
	bus    Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(bus Publisher, logger *slog.Logger) *Recorder {
	return &Recorder{
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *Recorder) Record(ctx context.Context, action, entityType, entityID string, metadata map[string]any) {
	entry := &auditDatamodel.Entry{
		ID:         id.New(id.PrefixAudit),
		TS:         r.now(),
		RequestID:  internal.RequestIDFromContext(ctx),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   maps.Clone(metadata),
	}
	if identity, ok := internal.IdentityFromContext(ctx); ok {
		entry.CompanyID = identity.CompanyID
		entry.ActorUserID = identity.UserID
		entry.ActorRole = identity.Role
	}
	if companyID, ok := metadata["company_id"].(string); ok && entry.CompanyID == "" {
		entry.CompanyID = companyID
	}

	if err := r.bus.Publish(context.WithoutCancel(ctx), events.NewAuditRecordedEvent(entry)); err != nil {
		r.logger.ErrorContext(ctx, "failed to publish audit entry", "error", err, "action", action, "entity_type", entityType)
	}
}

// Writer persists entries published by a Recorder.
type Writer struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewWriter(repo RepositoryAPI, logger *slog.Logger) *Writer {
	return &Writer{repo: repo, logger: logger}
}

func (w *Writer) Handle(ctx context.Context, event events.Event) error {
	recorded, ok := event.(*events.AuditRecordedEvent)
	if !ok {
		return fmt.Errorf("audit writer: unexpected event %T", event)
	}
	entry, ok := recorded.Record.(*auditDatamodel.Entry)
	if !ok {
		return fmt.Errorf("audit writer: unexpected record %T", recorded.Record)
	}
	if err := w.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("audit writer: insert %s: %w", entry.ID, err)
	}
	w.logger.DebugContext(ctx, "audit entry stored", "audit_id", entry.ID, "action", entry.Action)
	return nil
}

func (w *Writer) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventAuditRecorded, w.Handle)
}
