package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	attendanceDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/attendance"
	"github.com/frahmantamala/office-hr/internal/core/id"
)

type ListFilter struct {
	Date       string
	Department string
	Status     string
	Offset     int
	Limit      int
}

type RepositoryAPI interface {
	// Upsert inserts r or overwrites the mutable fields of the record with
	// the same (company_id, date, employee_id), returning the stored record.
	Upsert(ctx context.Context, r *attendanceDatamodel.Record) (*attendanceDatamodel.Record, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*attendanceDatamodel.Record, int64, error)
}

type Service struct {
	repo   RepositoryAPI
	audit  approval.AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, audit approval.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Upsert(ctx context.Context, actor internal.Identity, dto UpsertAttendanceDTO) (*Record, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	stored, err := s.repo.Upsert(ctx, ToDataModel(&Record{
		ID:           id.New(id.PrefixAttendance),
		CompanyID:    actor.CompanyID,
		Date:         dto.Date,
		EmployeeID:   dto.EmployeeID,
		EmployeeName: dto.EmployeeName,
		Department:   dto.Department,
		Status:       dto.Status,
		CheckIn:      dto.CheckIn,
		CheckOut:     dto.CheckOut,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upsert attendance", "error", err, "employee_id", dto.EmployeeID, "date", dto.Date)
		return nil, err
	}

	s.audit.Record(ctx, "UPSERT", "attendance", stored.ID, map[string]any{"date": stored.Date, "status": stored.Status})
	return FromDataModel(stored), nil
}

func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]*Record, int64, error) {
	rows, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}
