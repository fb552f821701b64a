package employee

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	"github.com/frahmantamala/office-hr/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/employee"
	"github.com/frahmantamala/office-hr/internal/core/id"
	"github.com/frahmantamala/office-hr/internal/user"
)

const entityEmployee = "employee"

type ListFilter struct {
	Status     string
	Department string
	// JoinedSince keeps employees whose join_date is on or after this date.
	JoinedSince string
	Offset      int
	Limit       int
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	FullName    *string
	Email       *string
	Phone       *string
	DOB         *string
	Department  *string
	Designation *string
	ManagerName *string
	JoinDate    *string
	Status      *string
	UserID      *string
}

func (c Changes) empty() bool {
	return c.FullName == nil && c.Email == nil && c.Phone == nil && c.DOB == nil &&
		c.Department == nil && c.Designation == nil && c.ManagerName == nil &&
		c.JoinDate == nil && c.Status == nil && c.UserID == nil
}

// Fields maps non-nil changes onto stored column names.
func (c Changes) Fields() map[string]interface{} {
	out := make(map[string]interface{})
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("full_name", c.FullName)
	set("email", c.Email)
	set("phone", c.Phone)
	set("dob", c.DOB)
	set("department", c.Department)
	set("designation", c.Designation)
	set("manager_name", c.ManagerName)
	set("join_date", c.JoinDate)
	set("status", c.Status)
	set("user_id", c.UserID)
	return out
}

type RepositoryAPI interface {
	// Create returns ErrEmployeeCodeExists on a duplicate (company_id, employee_code).
	Create(ctx context.Context, e *employeeDatamodel.Employee) error
	GetByID(ctx context.Context, companyID, id string) (*employeeDatamodel.Employee, error)
	FindByCode(ctx context.Context, companyID, code string) (*employeeDatamodel.Employee, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*employeeDatamodel.Employee, int64, error)
	// Update and Delete report false when no employee matched (id, company_id).
	Update(ctx context.Context, companyID, id string, changes Changes, at time.Time) (bool, error)
	Delete(ctx context.Context, companyID, id string) (bool, error)
	// ListBirthDates returns the dob of every active employee that has one.
	ListBirthDates(ctx context.Context, companyID string) ([]string, error)
}

type UserDirectory interface {
	Get(ctx context.Context, companyID, userID string) (*user.User, error)
}

type Service struct {
	repo   RepositoryAPI
	users  UserDirectory
	audit  approval.AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, users UserDirectory, audit approval.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// checkLink refuses a user_id that does not name an account of the company.
func (s *Service) checkLink(ctx context.Context, companyID, userID string) error {
	if userID == "" {
		return nil
	}
	if _, err := s.users.Get(ctx, companyID, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return internal.NewValidationFieldError("user_id", "user_id does not reference a user of this company", internal.ErrCodeValidationFailed)
		}
		return err
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor internal.Identity, dto CreateEmployeeDTO) (*Employee, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLink(ctx, actor.CompanyID, dto.UserID); err != nil {
		return nil, err
	}

	now := s.now()
	e := &Employee{
		ID:           id.New(id.PrefixEmployee),
		CompanyID:    actor.CompanyID,
		EmployeeCode: dto.EmployeeCode,
		FullName:     dto.FullName,
		Email:        dto.Email,
		Phone:        dto.Phone,
		DOB:          dto.DOB,
		Department:   dto.Department,
		Designation:  dto.Designation,
		ManagerName:  dto.ManagerName,
		JoinDate:     dto.JoinDate,
		Status:       dto.Status,
		UserID:       dto.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, ToDataModel(e)); err != nil {
		s.logger.WarnContext(ctx, "failed to create employee", "error", err, "company_id", actor.CompanyID)
		return nil, err
	}

	s.audit.Record(ctx, "CREATE", entityEmployee, e.ID, map[string]any{"employee_code": e.EmployeeCode})
	return e, nil
}

func (s *Service) Get(ctx context.Context, companyID, employeeID string) (*Employee, error) {
	dm, err := s.repo.GetByID(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(dm), nil
}

// FindByCode resolves an employee code within a company.
func (s *Service) FindByCode(ctx context.Context, companyID, code string) (*Employee, error) {
	dm, err := s.repo.FindByCode(ctx, companyID, code)
	if err != nil {
		return nil, err
	}
	return FromDataModel(dm), nil
}

func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]*Employee, int64, error) {
	rows, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list employees", "error", err, "company_id", companyID)
		return nil, 0, err
	}
	out := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

func (s *Service) Update(ctx context.Context, actor internal.Identity, employeeID string, dto UpdateEmployeeDTO) (*Employee, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.UserID != nil {
		if err := s.checkLink(ctx, actor.CompanyID, *dto.UserID); err != nil {
			return nil, err
		}
	}

	changes := Changes{
		FullName:    dto.FullName,
		Email:       dto.Email,
		Phone:       dto.Phone,
		DOB:         dto.DOB,
		Department:  dto.Department,
		Designation: dto.Designation,
		ManagerName: dto.ManagerName,
		JoinDate:    dto.JoinDate,
		Status:      dto.Status,
		UserID:      dto.UserID,
	}
	if changes.empty() {
		return s.Get(ctx, actor.CompanyID, employeeID)
	}

	found, err := s.repo.Update(ctx, actor.CompanyID, employeeID, changes, s.now())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEmployeeNotFound
	}

	updated, err := s.Get(ctx, actor.CompanyID, employeeID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "UPDATE", entityEmployee, employeeID, map[string]any{"fields": len(changes.Fields())})
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor internal.Identity, employeeID string) error {
	found, err := s.repo.Delete(ctx, actor.CompanyID, employeeID)
	if err != nil {
		return err
	}
	if !found {
		return ErrEmployeeNotFound
	}
	s.audit.Record(ctx, "DELETE", entityEmployee, employeeID, nil)
	return nil
}

// UpcomingBirthdays counts active employees whose next birthday falls within
// days of today, today included.
func (s *Service) UpcomingBirthdays(ctx context.Context, companyID string, days int) (int64, error) {
	dobs, err := s.repo.ListBirthDates(ctx, companyID)
	if err != nil {
		return 0, err
	}
	today := s.now()
	var n int64
	for _, dob := range dobs {
		if birthdayWithin(dob, today, days) {
			n++
		}
	}
	return n, nil
}

// birthdayWithin treats 29 February as 1 March in common years.
func birthdayWithin(dob string, today time.Time, days int) bool {
	born, err := time.Parse(validation.DateLayout, dob)
	if err != nil {
		return false
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	next := time.Date(today.Year(), born.Month(), born.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = time.Date(today.Year()+1, born.Month(), born.Day(), 0, 0, 0, 0, time.UTC)
	}
	return !next.After(today.AddDate(0, 0, days))
}
