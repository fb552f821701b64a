package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	employeeDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/employee"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
	"github.com/frahmantamala/office-hr/internal/employee"
)

type EmployeeRepository struct {
	col *mongo.Collection
}

func NewEmployeeRepository(client *mongodb.Client) employee.RepositoryAPI {
	return &EmployeeRepository{col: client.Collection(mongodb.ColEmployees)}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	if _, err := r.col.InsertOne(ctx, e); err != nil {
		if mongodb.IsDuplicateKey(err) {
			return employee.ErrEmployeeCodeExists
		}
		return mongodb.Wrap("employees.insert", err)
	}
	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, companyID, id string) (*employeeDatamodel.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id, "company_id": companyID})
}

func (r *EmployeeRepository) FindByCode(ctx context.Context, companyID, code string) (*employeeDatamodel.Employee, error) {
	return r.findOne(ctx, bson.M{"company_id": companyID, "employee_code": code})
}

func (r *EmployeeRepository) findOne(ctx context.Context, filter bson.M) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	if err := r.col.FindOne(ctx, filter).Decode(&e); err != nil {
		if mongodb.IsNoDocuments(err) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, mongodb.Wrap("employees.find", err)
	}
	return &e, nil
}

func (r *EmployeeRepository) List(ctx context.Context, companyID string, f employee.ListFilter) ([]*employeeDatamodel.Employee, int64, error) {
	filter := bson.M{"company_id": companyID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Department != "" {
		filter["department"] = f.Department
	}
	if f.JoinedSince != "" {
		filter["join_date"] = bson.M{"$gte": f.JoinedSince}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongodb.Wrap("employees.count", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}})
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, mongodb.Wrap("employees.list", err)
	}
	var out []*employeeDatamodel.Employee
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongodb.Wrap("employees.decode", err)
	}
	return out, total, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, companyID, id string, changes employee.Changes, at time.Time) (bool, error) {
	set := bson.M{"updated_at": at}
	for k, v := range changes.Fields() {
		set[k] = v
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "company_id": companyID}, bson.M{"$set": set})
	if err != nil {
		return false, mongodb.Wrap("employees.update", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, companyID, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return false, mongodb.Wrap("employees.delete", err)
	}
	return res.DeletedCount == 1, nil
}

func (r *EmployeeRepository) ListBirthDates(ctx context.Context, companyID string) ([]string, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"company_id": companyID, "status": employee.StatusActive, "dob": bson.M{"$nin": bson.A{"", nil}}},
		options.Find().SetProjection(bson.M{"dob": 1}),
	)
	if err != nil {
		return nil, mongodb.Wrap("employees.birth_dates", err)
	}
	var rows []struct {
		DOB string `bson:"dob"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, mongodb.Wrap("employees.birth_dates", err)
	}
	dobs := make([]string, 0, len(rows))
	for _, row := range rows {
		dobs = append(dobs, row.DOB)
	}
	return dobs, nil
}
