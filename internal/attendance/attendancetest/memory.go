// Package attendancetest provides an in-memory attendance store keyed like
// the real repositories.
package attendancetest

import (
	"context"
	"sort"
	"sync"

	"github.com/frahmantamala/office-hr/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/attendance"
)

type MemoryRepository struct {
	mu      sync.Mutex
	records map[[3]string]*attendanceDatamodel.Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[[3]string]*attendanceDatamodel.Record)}
}

var _ attendance.RepositoryAPI = (*MemoryRepository)(nil)

func (m *MemoryRepository) Upsert(_ context.Context, rec *attendanceDatamodel.Record) (*attendanceDatamodel.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [3]string{rec.CompanyID, rec.Date, rec.EmployeeID}
	existing, ok := m.records[key]
	if !ok {
		cp := *rec
		m.records[key] = &cp
		out := cp
		return &out, nil
	}
	existing.EmployeeName = rec.EmployeeName
	existing.Department = rec.Department
	existing.Status = rec.Status
	existing.CheckIn = rec.CheckIn
	existing.CheckOut = rec.CheckOut
	existing.UpdatedAt = rec.UpdatedAt
	out := *existing
	return &out, nil
}

func (m *MemoryRepository) List(_ context.Context, companyID string, f attendance.ListFilter) ([]*attendanceDatamodel.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*attendanceDatamodel.Record
	for _, r := range m.records {
		if r.CompanyID != companyID ||
			(f.Date != "" && r.Date != f.Date) ||
			(f.Department != "" && r.Department != f.Department) ||
			(f.Status != "" && r.Status != f.Status) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	return out, int64(len(out)), nil
}
