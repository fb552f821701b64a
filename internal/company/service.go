package company

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	companyDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/company"
)

type RepositoryAPI interface {
	Get(ctx context.Context, companyID string) (*companyDatamodel.Profile, error)
	// Save inserts or overwrites the profile and reports whether it was
	// inserted. A name held by another company yields ErrCompanyNameExists.
	Save(ctx context.Context, p *companyDatamodel.Profile) (bool, error)
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

func (s *Service) Get(ctx context.Context, companyID string) (*Profile, error) {
	dm, err := s.repo.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(dm), nil
}

func (s *Service) Save(ctx context.Context, actor internal.Identity, dto SaveCompanyDTO) (*Profile, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	p := &Profile{
		CompanyID: actor.CompanyID,
		Name:      dto.Name,
		LegalName: dto.LegalName,
		GSTIN:     dto.GSTIN,
		PAN:       dto.PAN,
		Address:   dto.Address,
		Phone:     dto.Phone,
		Email:     dto.Email,
		Currency:  dto.Currency,
		Timezone:  dto.Timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.repo.Save(ctx, ToDataModel(p))
	if err != nil {
		s.logger.WarnContext(ctx, "failed to save company profile", "error", err, "company_id", actor.CompanyID)
		return nil, err
	}

	action := "UPDATE"
	if created {
		action = "CREATE"
	}
	s.audit.Record(ctx, action, "company", actor.CompanyID, map[string]any{"name": p.Name})
	return s.Get(ctx, actor.CompanyID)
}
