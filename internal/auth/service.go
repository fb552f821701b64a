package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	employeeDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/employee"
	sessionDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/session"
	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/core/id"
	"github.com/frahmantamala/office-hr/internal/core/security"
	"github.com/frahmantamala/office-hr/internal/employee"
	"github.com/frahmantamala/office-hr/internal/user"
)

// Login failure reasons. They travel as the Cause of ErrInvalidCredentials
// so callers see one response while logs and tests can tell them apart.
var (
	ReasonUnknownUser = errors.New("user_not_found")
	ReasonBadSecret   = errors.New("bad_password")
	ReasonInactive    = errors.New("inactive")

	reasonNoSession = errors.New("session_not_found")
	reasonExpired   = errors.New("session_expired")
)

var ErrSessionNotFound = internal.NewNotFoundError("Session not found", internal.ErrCodeInvalidToken)

type RepositoryAPI interface {
	Create(ctx context.Context, s *sessionDatamodel.Session) error
	// FindByTokenHash returns ErrSessionNotFound when no session matches.
	FindByTokenHash(ctx context.Context, tokenHash string) (*sessionDatamodel.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) (int64, error)
	Touch(ctx context.Context, tokenHash string, meta ClientMeta, at time.Time) error
}

type UserLookup interface {
	GetByID(ctx context.Context, companyID, id string) (*userDatamodel.User, error)
	FindByEmail(ctx context.Context, companyID, email string) (*userDatamodel.User, error)
}

// EmployeeDirectory resolves an employee code to the personnel record that
// links the login account.
type EmployeeDirectory interface {
	FindByCode(ctx context.Context, companyID, code string) (*employeeDatamodel.Employee, error)
}

type Service struct {
	sessions  RepositoryAPI
	users     UserLookup
	employees EmployeeDirectory
	hasher    *security.Hasher
	ttl       time.Duration
	audit     approval.AuditRecorder
	logger    *slog.Logger
	now       func() time.Time

	decoyOnce sync.Once
	decoy     security.HashedSecret
}

func NewService(sessions RepositoryAPI, users UserLookup, employees EmployeeDirectory, hasher *security.Hasher, ttl time.Duration, audit approval.AuditRecorder, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		sessions:  sessions,
		users:     users,
		employees: employees,
		hasher:    hasher,
		ttl:       ttl,
		audit:     audit,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Login(ctx context.Context, dto LoginDTO, meta ClientMeta) (*LoginResponse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.findUser(ctx, dto.CompanyID, dto.Identifier)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		// spend the same derivation time as a real check
		s.hasher.VerifySecret(dto.Pin, s.decoySecret())
		return nil, s.reject(ReasonUnknownUser, dto.CompanyID, "")
	}

	if !s.hasher.VerifySecret(dto.Pin, user.StoredSecret(u)) {
		return nil, s.reject(ReasonBadSecret, dto.CompanyID, u.ID)
	}
	if u.Status != user.StatusActive {
		return nil, s.reject(ReasonInactive, dto.CompanyID, u.ID)
	}

	token, tokenHash, err := security.GenerateToken()
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	now := s.now()
	session := &sessionDatamodel.Session{
		ID:         id.New(id.PrefixSession),
		TokenHash:  tokenHash,
		CompanyID:  u.CompanyID,
		UserID:     u.ID,
		RoleKey:    u.RoleKey,
		ExpiresAt:  now.Add(s.ttl),
		UserAgent:  meta.UserAgent,
		IP:         meta.IP,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	identity := internal.Identity{CompanyID: u.CompanyID, UserID: u.ID, Role: u.RoleKey}
	s.audit.Record(internal.ContextWithIdentity(ctx, identity), "LOGIN", "session", session.ID, map[string]any{"ip": meta.IP})
	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID, "company_id", u.CompanyID)

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
		User: SessionUser{
			ID:        u.ID,
			FullName:  u.FullName,
			RoleKey:   u.RoleKey,
			CompanyID: u.CompanyID,
		},
	}, nil
}

func (s *Service) findUser(ctx context.Context, companyID, identifier string) (*userDatamodel.User, error) {
	if strings.Contains(identifier, "@") {
		return s.users.FindByEmail(ctx, companyID, strings.ToLower(identifier))
	}

	// an employee without a linked account cannot log in
	emp, err := s.employees.FindByCode(ctx, companyID, identifier)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	if emp.UserID == "" {
		return nil, user.ErrUserNotFound
	}
	return s.users.GetByID(ctx, companyID, emp.UserID)
}

func (s *Service) reject(reason error, companyID, userID string) error {
	s.logger.Warn("login rejected", "reason", reason.Error(), "company_id", companyID, "user_id", userID)
	return internal.ErrInvalidCredentials.WithCause(reason)
}

func (s *Service) decoySecret() security.HashedSecret {
	s.decoyOnce.Do(func() {
		hashed, err := s.hasher.HashSecret("decoy")
		if err == nil {
			s.decoy = hashed
		}
	})
	return s.decoy
}

// Authenticate resolves a bearer token to the caller. Expired sessions are
// deleted here and reported like unknown tokens.
func (s *Service) Authenticate(ctx context.Context, token string, meta ClientMeta) (internal.Identity, error) {
	if token == "" {
		return internal.Identity{}, internal.ErrMissingIdentity
	}
	tokenHash := security.HashToken(token)

	session, err := s.sessions.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return internal.Identity{}, internal.ErrInvalidToken.WithCause(reasonNoSession)
		}
		return internal.Identity{}, err
	}

	now := s.now()
	if !session.ExpiresAt.After(now) {
		if _, err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
			s.logger.WarnContext(ctx, "failed to delete expired session", "error", err, "session_id", session.ID)
		}
		return internal.Identity{}, internal.ErrInvalidToken.WithCause(reasonExpired)
	}

	if err := s.sessions.Touch(ctx, tokenHash, meta, now); err != nil {
		s.logger.WarnContext(ctx, "failed to touch session", "error", err, "session_id", session.ID)
	}

	return internal.Identity{CompanyID: session.CompanyID, UserID: session.UserID, Role: session.RoleKey}, nil
}

// Logout is idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	deleted, err := s.sessions.DeleteByTokenHash(ctx, security.HashToken(token))
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "logout", "deleted", deleted)
	return nil
}

func (s *Service) Me(ctx context.Context, identity internal.Identity) (*user.User, error) {
	u, err := s.users.GetByID(ctx, identity.CompanyID, identity.UserID)
	if err != nil {
		return nil, err
	}
	return user.FromDataModel(u), nil
}
