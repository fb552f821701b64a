package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/frahmantamala/office-hr/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/attendance"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
)

type AttendanceRepository struct {
	col *mongo.Collection
}

func NewAttendanceRepository(client *mongodb.Client) attendance.RepositoryAPI {
	return &AttendanceRepository{col: client.Collection(mongodb.ColAttendance)}
}

func (r *AttendanceRepository) Upsert(ctx context.Context, rec *attendanceDatamodel.Record) (*attendanceDatamodel.Record, error) {
	filter := bson.M{"company_id": rec.CompanyID, "date": rec.Date, "employee_id": rec.EmployeeID}
	update := bson.M{
		"$set": bson.M{
			"employee_name": rec.EmployeeName,
			"department":    rec.Department,
			"status":        rec.Status,
			"check_in":      rec.CheckIn,
			"check_out":     rec.CheckOut,
			"updated_at":    rec.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": rec.ID, "created_at": rec.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored attendanceDatamodel.Record
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	// two concurrent upserts of a new key: the loser retries as an update
	if mongodb.IsDuplicateKey(err) {
		err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	}
	if err != nil {
		return nil, mongodb.Wrap("attendance.upsert", err)
	}
	return &stored, nil
}

func (r *AttendanceRepository) List(ctx context.Context, companyID string, f attendance.ListFilter) ([]*attendanceDatamodel.Record, int64, error) {
	filter := bson.M{"company_id": companyID}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.Department != "" {
		filter["department"] = f.Department
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongodb.Wrap("attendance.count", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "employee_name", Value: 1}})
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, mongodb.Wrap("attendance.list", err)
	}
	var out []*attendanceDatamodel.Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongodb.Wrap("attendance.decode", err)
	}
	return out, total, nil
}
