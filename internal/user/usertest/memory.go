// Package usertest provides an in-memory user store with the same
// uniqueness rules as the real repositories.
package usertest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/user"
)

type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]*userDatamodel.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*userDatamodel.User)}
}

var _ user.RepositoryAPI = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, u *userDatamodel.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.CompanyID == u.CompanyID && existing.Email == u.Email {
			return user.ErrEmailExists
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// Put stores u without uniqueness checks.
func (m *MemoryRepository) Put(u *userDatamodel.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

func (m *MemoryRepository) GetByID(_ context.Context, companyID, id string) (*userDatamodel.User, error) {
	return m.find(func(u *userDatamodel.User) bool { return u.ID == id && u.CompanyID == companyID })
}

func (m *MemoryRepository) FindByEmail(_ context.Context, companyID, email string) (*userDatamodel.User, error) {
	email = strings.ToLower(email)
	return m.find(func(u *userDatamodel.User) bool { return u.CompanyID == companyID && u.Email == email })
}

func (m *MemoryRepository) find(match func(*userDatamodel.User) bool) (*userDatamodel.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *MemoryRepository) List(_ context.Context, companyID string, f user.ListFilter) ([]*userDatamodel.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*userDatamodel.User
	for _, u := range m.users {
		if u.CompanyID != companyID {
			continue
		}
		if (f.Status != "" && u.Status != f.Status) || (f.RoleKey != "" && u.RoleKey != f.RoleKey) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *MemoryRepository) Update(_ context.Context, companyID, id string, c user.Changes, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.CompanyID != companyID {
		return false, nil
	}
	if c.Email != nil {
		for _, other := range m.users {
			if other.ID != id && other.CompanyID == companyID && other.Email == *c.Email {
				return false, user.ErrEmailExists
			}
		}
		u.Email = *c.Email
	}
	if c.FullName != nil {
		u.FullName = *c.FullName
	}
	if c.Phone != nil {
		u.Phone = *c.Phone
	}
	if c.SignupApprovalID != nil {
		u.SignupApprovalID = *c.SignupApprovalID
	}
	if c.RoleKey != nil {
		u.RoleKey = *c.RoleKey
	}
	if c.Status != nil {
		u.Status = *c.Status
	}
	if c.Secret != nil {
		u.SecretHash = c.Secret.Hash
		u.SecretSalt = c.Secret.Salt
		u.SecretIterations = c.Secret.Iterations
	}
	u.UpdatedAt = at
	return true, nil
}

func (m *MemoryRepository) Delete(_ context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok && u.CompanyID == companyID {
		delete(m.users, id)
	}
	return nil
}

func (m *MemoryRepository) ListActiveIDsByRole(_ context.Context, companyID, role string, offset, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, u := range m.users {
		if u.CompanyID == companyID && u.RoleKey == role && u.Status == user.StatusActive {
			ids = append(ids, u.ID)
		}
	}
	sort.Strings(ids)
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Count returns how many users are stored.
func (m *MemoryRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
