package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/frahmantamala/office-hr/internal/company"
	companyDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/company"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
)

type CompanyRepository struct {
	col *mongo.Collection
}

func NewCompanyRepository(client *mongodb.Client) company.RepositoryAPI {
	return &CompanyRepository{col: client.Collection(mongodb.ColCompanies)}
}

func (r *CompanyRepository) Get(ctx context.Context, companyID string) (*companyDatamodel.Profile, error) {
	var p companyDatamodel.Profile
	if err := r.col.FindOne(ctx, bson.M{"_id": companyID}).Decode(&p); err != nil {
		if mongodb.IsNoDocuments(err) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, mongodb.Wrap("companies.find", err)
	}
	return &p, nil
}

func (r *CompanyRepository) Save(ctx context.Context, p *companyDatamodel.Profile) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": p.CompanyID},
		bson.M{
			"$set":         company.Fields(p),
			"$setOnInsert": bson.M{"created_at": p.CreatedAt},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		if mongodb.IsDuplicateKey(err) {
			return false, company.ErrCompanyNameExists
		}
		return false, mongodb.Wrap("companies.save", err)
	}
	return res.UpsertedCount == 1, nil
}
