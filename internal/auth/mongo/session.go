package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/frahmantamala/office-hr/internal/auth"
	sessionDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/session"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
)

type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(client *mongodb.Client) auth.RepositoryAPI {
	return &SessionRepository{col: client.Collection(mongodb.ColSessions)}
}

func (r *SessionRepository) Create(ctx context.Context, s *sessionDatamodel.Session) error {
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return mongodb.Wrap("sessions.insert", err)
	}
	return nil
}

func (r *SessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*sessionDatamodel.Session, error) {
	var s sessionDatamodel.Session
	if err := r.col.FindOne(ctx, bson.M{"token_hash": tokenHash}).Decode(&s); err != nil {
		if mongodb.IsNoDocuments(err) {
			return nil, auth.ErrSessionNotFound
		}
		return nil, mongodb.Wrap("sessions.find", err)
	}
	return &s, nil
}

func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) (int64, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"token_hash": tokenHash})
	if err != nil {
		return 0, mongodb.Wrap("sessions.delete", err)
	}
	return res.DeletedCount, nil
}

func (r *SessionRepository) Touch(ctx context.Context, tokenHash string, meta auth.ClientMeta, at time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"token_hash": tokenHash},
		bson.M{"$set": bson.M{"last_seen_at": at, "user_agent": meta.UserAgent, "ip": meta.IP}},
	)
	return mongodb.Wrap("sessions.touch", err)
}
