package approval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/core/events"
	"github.com/frahmantamala/office-hr/internal/permission"
)

// EntityHandler applies a decision to the subject entity. The workflow
// invokes it at most once per decision; Replay may invoke it again, so
// implementations must tolerate being re-run with the same Decision.
type EntityHandler interface {
	ApplyDecision(ctx context.Context, d Decision) error
}

type EntityHandlerFunc func(ctx context.Context, d Decision) error

func (f EntityHandlerFunc) ApplyDecision(ctx context.Context, d Decision) error {
	return f(ctx, d)
}

// Registry maps entity types to handlers. It is populated during wiring and
// only read afterwards.
type Registry struct {
	handlers map[string]EntityHandler
	managed  map[string]bool
	fallback EntityHandler
}

func NewRegistry(fallback EntityHandler) *Registry {
	return &Registry{
		handlers: make(map[string]EntityHandler),
		managed:  make(map[string]bool),
		fallback: fallback,
	}
}

func (r *Registry) Register(entityType string, handler EntityHandler) *Registry {
	r.handlers[entityType] = handler
	return r
}

// RegisterManaged registers a handler for an entity type whose approvals are
// only opened by its owning domain service, never through Workflow.Create.
func (r *Registry) RegisterManaged(entityType string, handler EntityHandler) *Registry {
	r.managed[entityType] = true
	return r.Register(entityType, handler)
}

func (r *Registry) Managed(entityType string) bool {
	return r.managed[entityType]
}

func (r *Registry) HandlerFor(entityType string) (EntityHandler, error) {
	if h, ok := r.handlers[entityType]; ok {
		return h, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no handler registered for entity type %q", entityType)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// StatusPropagationHandler is the default for entity types without domain
// side effects: it announces the decision on the event bus and nothing else.
type StatusPropagationHandler struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewStatusPropagationHandler(publisher Publisher, logger *slog.Logger) *StatusPropagationHandler {
	return &StatusPropagationHandler{publisher: publisher, logger: logger}
}

func (h *StatusPropagationHandler) ApplyDecision(ctx context.Context, d Decision) error {
	h.logger.InfoContext(ctx, "propagating approval decision",
		"approval_id", d.ApprovalID,
		"entity_type", d.EntityType,
		"entity_id", d.EntityID,
		"outcome", d.Outcome)
	if h.publisher == nil {
		return nil
	}
	return h.publisher.Publish(ctx, events.NewApprovalDecidedEvent(
		d.CompanyID, d.ApprovalID, d.EntityType, d.EntityID, string(d.Outcome), d.Comment))
}

// Rule authorizes an actor to decide approvals of one entity type.
type Rule func(actor internal.Identity) error

func PermissionRule(matrix *permission.Matrix, required string) Rule {
	return func(actor internal.Identity) error {
		return matrix.Require(actor.Role, required)
	}
}

func RoleRule(role string) Rule {
	return func(actor internal.Identity) error {
		return permission.RequireRole(actor.Role, role)
	}
}

// AccessPolicy is the per-entity-type authorization table consulted before a
// decision. Types without a rule use the fallback.
type AccessPolicy struct {
	rules    map[string]Rule
	fallback Rule
}

func NewAccessPolicy(fallback Rule) *AccessPolicy {
	return &AccessPolicy{rules: make(map[string]Rule), fallback: fallback}
}

func (p *AccessPolicy) Register(entityType string, rule Rule) *AccessPolicy {
	p.rules[entityType] = rule
	return p
}

func (p *AccessPolicy) Authorize(actor internal.Identity, entityType string) error {
	if rule, ok := p.rules[entityType]; ok {
		return rule(actor)
	}
	if p.fallback == nil {
		return internal.ErrPermissionDenied
	}
	return p.fallback(actor)
}

// DefaultAccessPolicy: leave approvals need leaves:approve, signups need the
// SUPERUSER role, anything else needs admin:write.
func DefaultAccessPolicy(matrix *permission.Matrix) *AccessPolicy {
	return NewAccessPolicy(PermissionRule(matrix, "admin:write")).
		Register(EntityLeave, PermissionRule(matrix, "leaves:approve")).
		Register(EntityUserSignup, RoleRule(permission.RoleSuperuser))
}
