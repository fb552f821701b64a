// Package approvaltest provides an in-memory approval store for tests of
// packages built on the approval workflow.
package approvaltest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/frahmantamala/office-hr/internal/approval"
	approvalDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/approval"
)

// MemoryRepository honours the same uniqueness and conditional-update
// contract as the real stores.
type MemoryRepository struct {
	mu        sync.Mutex
	approvals map[string]*approvalDatamodel.Approval
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{approvals: make(map[string]*approvalDatamodel.Approval)}
}

var _ approval.RepositoryAPI = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, a *approvalDatamodel.Approval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.approvals {
		if existing.CompanyID == a.CompanyID && existing.EntityType == a.EntityType && existing.EntityID == a.EntityID {
			return approval.ErrApprovalExists
		}
	}
	cp := *a
	m.approvals[a.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, companyID, id string) (*approvalDatamodel.Approval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.approvals[id]
	if !ok || a.CompanyID != companyID {
		return nil, approval.ErrApprovalNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryRepository) GetByEntity(_ context.Context, companyID, entityType, entityID string) (*approvalDatamodel.Approval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.approvals {
		if a.CompanyID == companyID && a.EntityType == entityType && a.EntityID == entityID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, approval.ErrApprovalNotFound
}

func (m *MemoryRepository) List(_ context.Context, companyID string, f approval.ListFilter) ([]*approvalDatamodel.Approval, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*approvalDatamodel.Approval
	for _, a := range m.approvals {
		if a.CompanyID != companyID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.EntityType != "" && a.EntityType != f.EntityType {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = nil
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (m *MemoryRepository) DecideIfPending(_ context.Context, companyID, id, status, decidedBy, comment string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.approvals[id]
	if !ok || a.CompanyID != companyID || a.Status != string(approval.StatusPending) {
		return false, nil
	}
	a.Status = status
	a.DecidedByUserID = &decidedBy
	a.DecisionComment = comment
	a.UpdatedAt = at
	return true, nil
}

// Status returns the stored status of id, or "" when absent.
func (m *MemoryRepository) Status(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.approvals[id]; ok {
		return a.Status
	}
	return ""
}

// ForEntity returns the stored approval for an entity in any company.
func (m *MemoryRepository) ForEntity(entityType, entityID string) *approvalDatamodel.Approval {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.approvals {
		if a.EntityType == entityType && a.EntityID == entityID {
			cp := *a
			return &cp
		}
	}
	return nil
}

// Recorder is an AuditRecorder that keeps every call.
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
}

type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
}

func (r *Recorder) Record(_ context.Context, action, entityType, entityID string, metadata map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Action: action, EntityType: entityType, EntityID: entityID, Metadata: metadata})
}

func (r *Recorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Action)
	}
	return out
}
