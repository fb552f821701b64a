// Package companytest provides an in-memory company profile store.
package companytest

import (
	"context"
	"sync"

	"github.com/frahmantamala/office-hr/internal/company"
	companyDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/company"
)

type MemoryRepository struct {
	mu       sync.Mutex
	profiles map[string]*companyDatamodel.Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[string]*companyDatamodel.Profile)}
}

var _ company.RepositoryAPI = (*MemoryRepository)(nil)

func (m *MemoryRepository) Get(_ context.Context, companyID string) (*companyDatamodel.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[companyID]
	if !ok {
		return nil, company.ErrCompanyNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) Save(_ context.Context, p *companyDatamodel.Profile) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.profiles {
		if id != p.CompanyID && other.Name == p.Name {
			return false, company.ErrCompanyNameExists
		}
	}
	cp := *p
	existing, ok := m.profiles[p.CompanyID]
	if ok {
		cp.CreatedAt = existing.CreatedAt
	}
	m.profiles[p.CompanyID] = &cp
	return !ok, nil
}
