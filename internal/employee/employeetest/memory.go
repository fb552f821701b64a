// Package employeetest provides an in-memory employee store with the same
// uniqueness rules as the real repositories.
package employeetest

import (
	"context"
	"sort"
	"sync"
	"time"

	employeeDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/employee"
	"github.com/frahmantamala/office-hr/internal/employee"
)

type MemoryRepository struct {
	mu        sync.Mutex
	employees map[string]*employeeDatamodel.Employee
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{employees: make(map[string]*employeeDatamodel.Employee)}
}

var _ employee.RepositoryAPI = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, e *employeeDatamodel.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.employees {
		if existing.CompanyID == e.CompanyID && existing.EmployeeCode == e.EmployeeCode {
			return employee.ErrEmployeeCodeExists
		}
	}
	cp := *e
	m.employees[e.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, companyID, id string) (*employeeDatamodel.Employee, error) {
	return m.find(func(e *employeeDatamodel.Employee) bool { return e.ID == id && e.CompanyID == companyID })
}

func (m *MemoryRepository) FindByCode(_ context.Context, companyID, code string) (*employeeDatamodel.Employee, error) {
	return m.find(func(e *employeeDatamodel.Employee) bool { return e.CompanyID == companyID && e.EmployeeCode == code })
}

func (m *MemoryRepository) find(match func(*employeeDatamodel.Employee) bool) (*employeeDatamodel.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employees {
		if match(e) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (m *MemoryRepository) List(_ context.Context, companyID string, f employee.ListFilter) ([]*employeeDatamodel.Employee, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*employeeDatamodel.Employee
	for _, e := range m.employees {
		if e.CompanyID != companyID {
			continue
		}
		if (f.Status != "" && e.Status != f.Status) || (f.Department != "" && e.Department != f.Department) {
			continue
		}
		if f.JoinedSince != "" && (e.JoinDate == "" || e.JoinDate < f.JoinedSince) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	total := int64(len(out))
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (m *MemoryRepository) Update(_ context.Context, companyID, id string, c employee.Changes, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok || e.CompanyID != companyID {
		return false, nil
	}
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&e.FullName, c.FullName)
	apply(&e.Email, c.Email)
	apply(&e.Phone, c.Phone)
	apply(&e.DOB, c.DOB)
	apply(&e.Department, c.Department)
	apply(&e.Designation, c.Designation)
	apply(&e.ManagerName, c.ManagerName)
	apply(&e.JoinDate, c.JoinDate)
	apply(&e.Status, c.Status)
	apply(&e.UserID, c.UserID)
	e.UpdatedAt = at
	return true, nil
}

func (m *MemoryRepository) Delete(_ context.Context, companyID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok || e.CompanyID != companyID {
		return false, nil
	}
	delete(m.employees, id)
	return true, nil
}

func (m *MemoryRepository) ListBirthDates(_ context.Context, companyID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var dobs []string
	for _, e := range m.employees {
		if e.CompanyID == companyID && e.Status == employee.StatusActive && e.DOB != "" {
			dobs = append(dobs, e.DOB)
		}
	}
	return dobs, nil
}
