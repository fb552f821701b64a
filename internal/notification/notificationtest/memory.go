// Package notificationtest provides an in-memory notification store.
package notificationtest

import (
	"context"
	"sort"
	"sync"

	notificationDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/notification"
	"github.com/frahmantamala/office-hr/internal/notification"
)

type MemoryRepository struct {
	mu    sync.Mutex
	items []*notificationDatamodel.Notification
	// FailCreate makes every Create return this error when set.
	FailCreate error
}

var _ notification.RepositoryAPI = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, n *notificationDatamodel.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate != nil {
		return m.FailCreate
	}
	if n.SourceKey != nil {
		for _, existing := range m.items {
			if existing.SourceKey != nil && *existing.SourceKey == *n.SourceKey &&
				existing.CompanyID == n.CompanyID && existing.UserID == n.UserID {
				return notification.ErrDuplicate
			}
		}
	}
	cp := *n
	m.items = append(m.items, &cp)
	return nil
}

func (m *MemoryRepository) FindBySource(_ context.Context, companyID, userID, sourceKey string) (*notificationDatamodel.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.CompanyID == companyID && n.UserID == userID && n.SourceKey != nil && *n.SourceKey == sourceKey {
			cp := *n
			return &cp, nil
		}
	}
	return nil, notification.ErrNotificationNotFound
}

func (m *MemoryRepository) List(_ context.Context, companyID, userID string, f notification.ListFilter) ([]*notificationDatamodel.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notificationDatamodel.Notification
	for _, n := range m.items {
		if n.CompanyID == companyID && n.UserID == userID && (!f.UnreadOnly || !n.Read) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (m *MemoryRepository) MarkRead(_ context.Context, companyID, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id && n.CompanyID == companyID && n.UserID == userID {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) MarkAllRead(_ context.Context, companyID, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		if item.CompanyID == companyID && item.UserID == userID && !item.Read {
			item.Read = true
			n++
		}
	}
	return n, nil
}

// Recipients lists the user id of every stored notification, sorted.
func (m *MemoryRepository) Recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.items))
	for _, n := range m.items {
		out = append(out, n.UserID)
	}
	sort.Strings(out)
	return out
}

// For returns the notifications held by one user in insertion order.
func (m *MemoryRepository) For(userID string) []*notificationDatamodel.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notificationDatamodel.Notification
	for _, n := range m.items {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out
}
