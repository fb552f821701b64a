package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	leaveDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/leave"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
	"github.com/frahmantamala/office-hr/internal/leave"
)

type LeaveRepository struct {
	col *mongo.Collection
}

func NewLeaveRepository(client *mongodb.Client) leave.RepositoryAPI {
	return &LeaveRepository{col: client.Collection(mongodb.ColLeaves)}
}

func (r *LeaveRepository) Create(ctx context.Context, l *leaveDatamodel.LeaveRequest) error {
	if _, err := r.col.InsertOne(ctx, l); err != nil {
		return mongodb.Wrap("leaves.insert", err)
	}
	return nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, companyID, id string) (*leaveDatamodel.LeaveRequest, error) {
	var l leaveDatamodel.LeaveRequest
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&l); err != nil {
		if mongodb.IsNoDocuments(err) {
			return nil, leave.ErrLeaveNotFound
		}
		return nil, mongodb.Wrap("leaves.find", err)
	}
	return &l, nil
}

func (r *LeaveRepository) List(ctx context.Context, companyID string, f leave.ListFilter) ([]*leaveDatamodel.LeaveRequest, int64, error) {
	filter := bson.M{"company_id": companyID}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongodb.Wrap("leaves.count", err)
	}

	cur, err := r.col.Find(ctx, filter, mongodb.Page(f.Offset, f.Limit, "created_at"))
	if err != nil {
		return nil, 0, mongodb.Wrap("leaves.list", err)
	}
	var out []*leaveDatamodel.LeaveRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongodb.Wrap("leaves.decode", err)
	}
	return out, total, nil
}

func (r *LeaveRepository) SetDecision(ctx context.Context, companyID, id, status, comment string, at time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID},
		bson.M{"$set": bson.M{"status": status, "approver_comment": comment, "updated_at": at}},
	)
	if err != nil {
		return false, mongodb.Wrap("leaves.set_decision", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *LeaveRepository) Delete(ctx context.Context, companyID, id string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID}); err != nil {
		return mongodb.Wrap("leaves.delete", err)
	}
	return nil
}
