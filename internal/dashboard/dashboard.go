// Package dashboard aggregates tenant-wide counts for the landing page.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/office-hr/internal/attendance"
	"github.com/frahmantamala/office-hr/internal/core/common/validation"
	"github.com/frahmantamala/office-hr/internal/employee"
	"github.com/frahmantamala/office-hr/internal/leave"
)

const window = 30

type Summary struct {
	Headcount                 int64  `json:"headcount"`
	ActiveCount               int64  `json:"active_count"`
	PresentTodayCount         int64  `json:"present_today_count"`
	PendingLeavesCount        int64  `json:"pending_leaves_count"`
	NewJoiners30dCount        int64  `json:"new_joiners_30d_count"`
	UpcomingBirthdays30dCount int64  `json:"upcoming_birthdays_30d_count"`
	AsOf                      string `json:"as_of"`
}

type Employees interface {
	List(ctx context.Context, companyID string, filter employee.ListFilter) ([]*employee.Employee, int64, error)
	UpcomingBirthdays(ctx context.Context, companyID string, days int) (int64, error)
}

type Attendance interface {
	List(ctx context.Context, companyID string, filter attendance.ListFilter) ([]*attendance.Record, int64, error)
}

type Leaves interface {
	List(ctx context.Context, companyID string, filter leave.ListFilter) ([]*leave.Leave, int64, error)
}

type Service struct {
	employees  Employees
	attendance Attendance
	leaves     Leaves
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(employees Employees, attendance Attendance, leaves Leaves, logger *slog.Logger) *Service {
	return &Service{
		employees:  employees,
		attendance: attendance,
		leaves:     leaves,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Summary runs the counts concurrently; the first failure cancels the rest.
func (s *Service) Summary(ctx context.Context, companyID string) (*Summary, error) {
	now := s.now()
	today := now.Format(validation.DateLayout)
	cutoff := now.AddDate(0, 0, -window).Format(validation.DateLayout)
	out := &Summary{AsOf: today}

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	employees := func(f employee.ListFilter) func(context.Context) (int64, error) {
		return func(ctx context.Context) (int64, error) {
			f.Limit = 1
			_, total, err := s.employees.List(ctx, companyID, f)
			return total, err
		}
	}

	count(&out.Headcount, employees(employee.ListFilter{}))
	count(&out.ActiveCount, employees(employee.ListFilter{Status: employee.StatusActive}))
	count(&out.NewJoiners30dCount, employees(employee.ListFilter{JoinedSince: cutoff}))
	count(&out.UpcomingBirthdays30dCount, func(ctx context.Context) (int64, error) {
		return s.employees.UpcomingBirthdays(ctx, companyID, window)
	})
	count(&out.PresentTodayCount, func(ctx context.Context) (int64, error) {
		_, total, err := s.attendance.List(ctx, companyID, attendance.ListFilter{Date: today, Status: attendance.StatusPresent, Limit: 1})
		return total, err
	})
	count(&out.PendingLeavesCount, func(ctx context.Context) (int64, error) {
		_, total, err := s.leaves.List(ctx, companyID, leave.ListFilter{Status: leave.StatusPending, Limit: 1})
		return total, err
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "failed to build dashboard summary", "error", err, "company_id", companyID)
		return nil, err
	}
	return out, nil
}
