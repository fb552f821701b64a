package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/office-hr/internal/auth"
	sessionDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/session"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) auth.RepositoryAPI {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *sessionDatamodel.Session) error {
	return sqlstore.Wrap("sessions.insert", r.db.WithContext(ctx).Create(s).Error)
}

func (r *SessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*sessionDatamodel.Session, error) {
	var s sessionDatamodel.Session
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrSessionNotFound
		}
		return nil, sqlstore.Wrap("sessions.find", err)
	}
	return &s, nil
}

func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) (int64, error) {
	res := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&sessionDatamodel.Session{})
	if res.Error != nil {
		return 0, sqlstore.Wrap("sessions.delete", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *SessionRepository) Touch(ctx context.Context, tokenHash string, meta auth.ClientMeta, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&sessionDatamodel.Session{}).
		Where("token_hash = ?", tokenHash).
		Updates(map[string]interface{}{
			"last_seen_at": at,
			"user_agent":   meta.UserAgent,
			"ip":           meta.IP,
		}).Error
	return sqlstore.Wrap("sessions.touch", err)
}
