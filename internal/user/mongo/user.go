package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
	"github.com/frahmantamala/office-hr/internal/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(client *mongodb.Client) user.RepositoryAPI {
	return &UserRepository{col: client.Collection(mongodb.ColUsers)}
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongodb.IsDuplicateKey(err) {
			return user.ErrEmailExists
		}
		return mongodb.Wrap("users.insert", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, companyID, id string) (*userDatamodel.User, error) {
	return r.findOne(ctx, bson.M{"_id": id, "company_id": companyID})
}

func (r *UserRepository) FindByEmail(ctx context.Context, companyID, email string) (*userDatamodel.User, error) {
	return r.findOne(ctx, bson.M{"company_id": companyID, "email": strings.ToLower(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if mongodb.IsNoDocuments(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, mongodb.Wrap("users.find", err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, companyID string, f user.ListFilter) ([]*userDatamodel.User, int64, error) {
	filter := bson.M{"company_id": companyID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.RoleKey != "" {
		filter["role_key"] = f.RoleKey
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongodb.Wrap("users.count", err)
	}

	cur, err := r.col.Find(ctx, filter, mongodb.Page(f.Offset, f.Limit, "created_at"))
	if err != nil {
		return nil, 0, mongodb.Wrap("users.list", err)
	}
	var out []*userDatamodel.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongodb.Wrap("users.decode", err)
	}
	return out, total, nil
}

func (r *UserRepository) Update(ctx context.Context, companyID, id string, changes user.Changes, at time.Time) (bool, error) {
	set := bson.M{"updated_at": at}
	unset := bson.M{}
	for k, v := range changes.Fields() {
		if v == nil {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "company_id": companyID}, update)
	if err != nil {
		if mongodb.IsDuplicateKey(err) {
			return false, user.ErrEmailExists
		}
		return false, mongodb.Wrap("users.update", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *UserRepository) Delete(ctx context.Context, companyID, id string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID}); err != nil {
		return mongodb.Wrap("users.delete", err)
	}
	return nil
}

func (r *UserRepository) ListActiveIDsByRole(ctx context.Context, companyID, role string, offset, limit int) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{"company_id": companyID, "role_key": role, "status": user.StatusActive}, opts)
	if err != nil {
		return nil, mongodb.Wrap("users.list_by_role", err)
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, mongodb.Wrap("users.decode", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}
