package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/frahmantamala/office-hr/internal/audit"
	auditDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/audit"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
)

type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(client *mongodb.Client) audit.RepositoryAPI {
	return &AuditRepository{col: client.Collection(mongodb.ColAuditLogs)}
}

func (r *AuditRepository) Insert(ctx context.Context, e *auditDatamodel.Entry) error {
	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return mongodb.Wrap("audit_logs.insert", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, companyID string, f audit.ListFilter) ([]*auditDatamodel.Entry, int64, error) {
	filter := bson.M{"company_id": companyID}
	if f.EntityType != "" {
		filter["entity_type"] = f.EntityType
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongodb.Wrap("audit_logs.count", err)
	}

	cur, err := r.col.Find(ctx, filter, mongodb.Page(f.Offset, f.Limit, "ts"))
	if err != nil {
		return nil, 0, mongodb.Wrap("audit_logs.list", err)
	}
	var out []*auditDatamodel.Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongodb.Wrap("audit_logs.decode", err)
	}
	return out, total, nil
}
