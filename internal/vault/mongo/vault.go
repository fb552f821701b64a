package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	vaultDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/vault"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
	"github.com/frahmantamala/office-hr/internal/vault"
)

type VaultRepository struct {
	col *mongo.Collection
}

func NewVaultRepository(client *mongodb.Client) vault.RepositoryAPI {
	return &VaultRepository{col: client.Collection(mongodb.ColVaultItems)}
}

func (r *VaultRepository) Create(ctx context.Context, item *vaultDatamodel.Item) error {
	if _, err := r.col.InsertOne(ctx, item); err != nil {
		return mongodb.Wrap("vault_items.insert", err)
	}
	return nil
}

func (r *VaultRepository) GetByID(ctx context.Context, companyID, id string) (*vaultDatamodel.Item, error) {
	var item vaultDatamodel.Item
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&item); err != nil {
		if mongodb.IsNoDocuments(err) {
			return nil, vault.ErrItemNotFound
		}
		return nil, mongodb.Wrap("vault_items.find", err)
	}
	return &item, nil
}

func (r *VaultRepository) List(ctx context.Context, companyID string, f vault.ListFilter) ([]*vaultDatamodel.Item, int64, error) {
	filter := bson.M{"company_id": companyID}
	if f.OwnerUserID != "" {
		filter["owner_user_id"] = f.OwnerUserID
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongodb.Wrap("vault_items.count", err)
	}

	cur, err := r.col.Find(ctx, filter, mongodb.Page(f.Offset, f.Limit, "updated_at"))
	if err != nil {
		return nil, 0, mongodb.Wrap("vault_items.list", err)
	}
	var out []*vaultDatamodel.Item
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongodb.Wrap("vault_items.decode", err)
	}
	return out, total, nil
}

// Update unsets the notes fields when they are cleared so the stored
// document matches a fresh item without notes.
func (r *VaultRepository) Update(ctx context.Context, companyID, id string, changes vault.Changes, at time.Time) (bool, error) {
	set := bson.M{"updated_at": at}
	unset := bson.M{}
	for k, v := range changes.Fields() {
		set[k] = v
	}
	if changes.Notes != nil && changes.Notes.Hash == "" {
		for _, k := range []string{"notes_hash", "notes_salt", "notes_iterations"} {
			delete(set, k)
			unset[k] = ""
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "company_id": companyID}, update)
	if err != nil {
		return false, mongodb.Wrap("vault_items.update", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *VaultRepository) Delete(ctx context.Context, companyID, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return false, mongodb.Wrap("vault_items.delete", err)
	}
	return res.DeletedCount == 1, nil
}
