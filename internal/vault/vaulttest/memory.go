// Package vaulttest provides an in-memory vault store.
package vaulttest

import (
	"context"
	"sort"
	"sync"
	"time"

	vaultDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/vault"
	"github.com/frahmantamala/office-hr/internal/vault"
)

type MemoryRepository struct {
	mu    sync.Mutex
	items map[string]*vaultDatamodel.Item
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*vaultDatamodel.Item)}
}

var _ vault.RepositoryAPI = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, item *vaultDatamodel.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

// Stored returns the raw record, hashes included.
func (m *MemoryRepository) Stored(id string) *vaultDatamodel.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil
	}
	cp := *item
	return &cp
}

func (m *MemoryRepository) GetByID(_ context.Context, companyID, id string) (*vaultDatamodel.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.CompanyID != companyID {
		return nil, vault.ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *MemoryRepository) List(_ context.Context, companyID string, f vault.ListFilter) ([]*vaultDatamodel.Item, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*vaultDatamodel.Item
	for _, item := range m.items {
		if item.CompanyID != companyID || (f.OwnerUserID != "" && item.OwnerUserID != f.OwnerUserID) {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *MemoryRepository) Update(_ context.Context, companyID, id string, c vault.Changes, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.CompanyID != companyID {
		return false, nil
	}
	if c.Title != nil {
		item.Title = *c.Title
	}
	if c.Username != nil {
		item.Username = *c.Username
	}
	if c.URL != nil {
		item.URL = *c.URL
	}
	if c.Tags != nil {
		item.Tags = vaultDatamodel.Tags(*c.Tags)
	}
	if c.Password != nil {
		item.PasswordHash, item.PasswordSalt, item.PasswordIterations = c.Password.Hash, c.Password.Salt, c.Password.Iterations
	}
	if c.Notes != nil {
		item.NotesHash, item.NotesSalt, item.NotesIterations = c.Notes.Hash, c.Notes.Salt, c.Notes.Iterations
	}
	item.UpdatedAt = at
	return true, nil
}

func (m *MemoryRepository) Delete(_ context.Context, companyID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.CompanyID != companyID {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}
