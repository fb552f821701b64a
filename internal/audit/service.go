package audit

import (
	"context"
	"log/slog"
	"strings"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]*Entry, int64, error) {
	filter.EntityType = strings.TrimSpace(filter.EntityType)
	filter.Action = strings.ToUpper(strings.TrimSpace(filter.Action))

	rows, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}
