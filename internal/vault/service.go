package vault

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	vaultDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/vault"
	"github.com/frahmantamala/office-hr/internal/core/id"
	"github.com/frahmantamala/office-hr/internal/core/security"
	"github.com/frahmantamala/office-hr/internal/permission"
)

const entityVaultItem = "vault_item"

type ListFilter struct {
	// OwnerUserID restricts the listing to one owner when set.
	OwnerUserID string
	Offset      int
	Limit       int
}

// Changes is a partial update; nil fields are left untouched. A non-nil
// Notes holding the zero secret clears the notes.
type Changes struct {
	Title    *string
	Username *string
	URL      *string
	Tags     *[]string
	Password *security.HashedSecret
	Notes    *security.HashedSecret
}

func (c Changes) Fields() map[string]interface{} {
	out := make(map[string]interface{})
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("title", c.Title)
	set("username", c.Username)
	set("url", c.URL)
	if c.Tags != nil {
		out["tags"] = vaultDatamodel.Tags(*c.Tags)
	}
	if c.Password != nil {
		out["password_hash"] = c.Password.Hash
		out["password_salt"] = c.Password.Salt
		out["password_iterations"] = c.Password.Iterations
	}
	if c.Notes != nil {
		out["notes_hash"] = c.Notes.Hash
		out["notes_salt"] = c.Notes.Salt
		out["notes_iterations"] = c.Notes.Iterations
	}
	return out
}

type RepositoryAPI interface {
	Create(ctx context.Context, item *vaultDatamodel.Item) error
	GetByID(ctx context.Context, companyID, id string) (*vaultDatamodel.Item, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*vaultDatamodel.Item, int64, error)
	// Update and Delete report false when no item matched (id, company_id).
	Update(ctx context.Context, companyID, id string, changes Changes, at time.Time) (bool, error)
	Delete(ctx context.Context, companyID, id string) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	hasher *security.Hasher
	audit  approval.AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, hasher *security.Hasher, audit approval.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// seesAll reports whether the caller may open items owned by others.
func seesAll(actor internal.Identity) bool {
	return actor.Role == permission.RoleMD
}

func (s *Service) hash(plaintext string) (security.HashedSecret, error) {
	hashed, err := s.hasher.HashSecret(plaintext)
	if err != nil {
		return security.HashedSecret{}, internal.NewInternalError("failed to hash secret", err)
	}
	return hashed, nil
}

func (s *Service) Create(ctx context.Context, actor internal.Identity, dto CreateItemDTO) (*Item, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	dm := &vaultDatamodel.Item{
		ID:          id.New(id.PrefixVaultItem),
		CompanyID:   actor.CompanyID,
		OwnerUserID: actor.UserID,
		Title:       dto.Title,
		Username:    dto.Username,
		URL:         dto.URL,
		Tags:        vaultDatamodel.Tags(dto.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	password, err := s.hash(dto.Password)
	if err != nil {
		return nil, err
	}
	setPassword(dm, password)
	if dto.Notes != "" {
		notes, err := s.hash(dto.Notes)
		if err != nil {
			return nil, err
		}
		setNotes(dm, notes)
	}

	if err := s.repo.Create(ctx, dm); err != nil {
		s.logger.ErrorContext(ctx, "failed to create vault item", "error", err, "company_id", actor.CompanyID)
		return nil, err
	}

	s.audit.Record(ctx, "CREATE", entityVaultItem, dm.ID, map[string]any{"title": dm.Title})
	return FromDataModel(dm), nil
}

// load returns the item when the caller owns it or sees every item.
func (s *Service) load(ctx context.Context, actor internal.Identity, itemID string) (*vaultDatamodel.Item, error) {
	dm, err := s.repo.GetByID(ctx, actor.CompanyID, itemID)
	if err != nil {
		return nil, err
	}
	if dm.OwnerUserID != actor.UserID && !seesAll(actor) {
		s.logger.WarnContext(ctx, "vault item access refused", "item_id", itemID, "user_id", actor.UserID)
		return nil, ErrNoAccess
	}
	return dm, nil
}

func (s *Service) Get(ctx context.Context, actor internal.Identity, itemID string) (*Item, error) {
	dm, err := s.load(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(dm), nil
}

// List shows MD every item of the company and everyone else their own.
func (s *Service) List(ctx context.Context, actor internal.Identity, filter ListFilter) ([]*Item, int64, error) {
	if !seesAll(actor) {
		filter.OwnerUserID = actor.UserID
	}
	rows, total, err := s.repo.List(ctx, actor.CompanyID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

func (s *Service) Update(ctx context.Context, actor internal.Identity, itemID string, dto UpdateItemDTO) (*Item, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, actor, itemID); err != nil {
		return nil, err
	}

	changes := Changes{Title: dto.Title, Username: dto.Username, URL: dto.URL, Tags: dto.Tags}
	if err := s.apply(ctx, actor, itemID, changes); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "UPDATE", entityVaultItem, itemID, nil)
	return s.Get(ctx, actor, itemID)
}

func (s *Service) ResetSecret(ctx context.Context, actor internal.Identity, itemID string, dto ResetSecretDTO) (*Item, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, actor, itemID); err != nil {
		return nil, err
	}

	var changes Changes
	if dto.Password != nil {
		hashed, err := s.hash(*dto.Password)
		if err != nil {
			return nil, err
		}
		changes.Password = &hashed
	}
	if dto.Notes != nil {
		cleared := security.HashedSecret{}
		changes.Notes = &cleared
		if *dto.Notes != "" {
			hashed, err := s.hash(*dto.Notes)
			if err != nil {
				return nil, err
			}
			changes.Notes = &hashed
		}
	}

	if err := s.apply(ctx, actor, itemID, changes); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "RESET_SECRET", entityVaultItem, itemID, map[string]any{
		"password": dto.Password != nil,
		"notes":    dto.Notes != nil,
	})
	return s.Get(ctx, actor, itemID)
}

func (s *Service) apply(ctx context.Context, actor internal.Identity, itemID string, changes Changes) error {
	found, err := s.repo.Update(ctx, actor.CompanyID, itemID, changes, s.now())
	if err != nil {
		return err
	}
	if !found {
		return ErrItemNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, actor internal.Identity, itemID string) error {
	if _, err := s.load(ctx, actor, itemID); err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, actor.CompanyID, itemID)
	if err != nil {
		return err
	}
	if !found {
		return ErrItemNotFound
	}
	s.audit.Record(ctx, "DELETE", entityVaultItem, itemID, nil)
	return nil
}
