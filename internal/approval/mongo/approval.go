package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/frahmantamala/office-hr/internal/approval"
	approvalDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/approval"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
)

type ApprovalRepository struct {
	col *mongo.Collection
}

func NewApprovalRepository(client *mongodb.Client) approval.RepositoryAPI {
	return &ApprovalRepository{col: client.Collection(mongodb.ColApprovals)}
}

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDatamodel.Approval) error {
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		if mongodb.IsDuplicateKey(err) {
			return approval.ErrApprovalExists
		}
		return mongodb.Wrap("approvals.insert", err)
	}
	return nil
}

func (r *ApprovalRepository) GetByID(ctx context.Context, companyID, id string) (*approvalDatamodel.Approval, error) {
	return r.findOne(ctx, bson.M{"_id": id, "company_id": companyID})
}

func (r *ApprovalRepository) GetByEntity(ctx context.Context, companyID, entityType, entityID string) (*approvalDatamodel.Approval, error) {
	return r.findOne(ctx, bson.M{"company_id": companyID, "entity_type": entityType, "entity_id": entityID})
}

func (r *ApprovalRepository) findOne(ctx context.Context, filter bson.M) (*approvalDatamodel.Approval, error) {
	var a approvalDatamodel.Approval
	if err := r.col.FindOne(ctx, filter).Decode(&a); err != nil {
		if mongodb.IsNoDocuments(err) {
			return nil, approval.ErrApprovalNotFound
		}
		return nil, mongodb.Wrap("approvals.find", err)
	}
	return &a, nil
}

func (r *ApprovalRepository) List(ctx context.Context, companyID string, f approval.ListFilter) ([]*approvalDatamodel.Approval, int64, error) {
	filter := bson.M{"company_id": companyID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.EntityType != "" {
		filter["entity_type"] = f.EntityType
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongodb.Wrap("approvals.count", err)
	}

	cur, err := r.col.Find(ctx, filter, mongodb.Page(f.Offset, f.Limit, "created_at"))
	if err != nil {
		return nil, 0, mongodb.Wrap("approvals.list", err)
	}
	var out []*approvalDatamodel.Approval
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongodb.Wrap("approvals.decode", err)
	}
	return out, total, nil
}

// DecideIfPending relies on the server applying the status=pending predicate
// and the $set atomically; MatchedCount tells the caller whether it won.
func (r *ApprovalRepository) DecideIfPending(ctx context.Context, companyID, id, status, decidedBy, comment string, at time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID, "status": string(approval.StatusPending)},
		bson.M{"$set": bson.M{
			"status":             status,
			"decided_by_user_id": decidedBy,
			"decision_comment":   comment,
			"updated_at":         at,
		}},
	)
	if err != nil {
		return false, mongodb.Wrap("approvals.decide", err)
	}
	return res.MatchedCount == 1, nil
}
