// Package mongodb owns the MongoDB connection, collection names, index
// definitions and the mapping of driver errors onto the service taxonomy.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/frahmantamala/office-hr/internal"
)

const (
	ColApprovals     = "approvals"
	ColLeaves        = "leave_requests"
	ColUsers         = "users"
	ColSessions      = "sessions"
	ColNotifications = "notifications"
	ColAuditLogs     = "audit_logs"
	ColEmployees     = "employees"
	ColVaultItems    = "vault_items"
	ColAttendance    = "attendance"
	ColCompanies     = "companies"
)

type Client struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// Connect dials the cluster and verifies it with a ping. The operation timeout
// is applied client-side to every command.
func Connect(ctx context.Context, cfg internal.DatabaseConfig) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.Source).
		SetTimeout(cfg.OperationTimeout)
	if cfg.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxOpenConns))
	}
	if cfg.MaxIdleConns > 0 {
		opts.SetMinPoolSize(uint64(cfg.MaxIdleConns))
	}
	if cfg.ConnMaxIdleTime > 0 {
		opts.SetMaxConnIdleTime(cfg.ConnMaxIdleTime)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	c := &Client{client: client, db: client.Database(cfg.Name), timeout: cfg.OperationTimeout}
	if err := c.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}
	return c, nil
}

func (c *Client) Database() *mongo.Database {
	return c.db
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes creates every index the repositories rely on. The unique
// indexes are what turn concurrent duplicate inserts into Conflict errors.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	for col, models := range indexes() {
		if _, err := c.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongodb: create %s indexes: %w", col, err)
		}
	}
	return nil
}

func indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		ColApprovals: {
			{
				Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_company_entity"),
			},
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		ColLeaves: {
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		ColUsers: {
			{
				Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_company_email"),
			},
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "role_key", Value: 1}, {Key: "status", Value: 1}}},
		},
		ColSessions: {
			{
				Keys:    bson.D{{Key: "token_hash", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_token_hash"),
			},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		ColNotifications: {
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{
				Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "source_key", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_recipient_source").
					SetPartialFilterExpression(bson.M{"source_key": bson.M{"$type": "string"}}),
			},
		},
		ColAuditLogs: {
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "ts", Value: -1}}},
		},
		ColEmployees: {
			{
				Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "employee_code", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_company_employee_code"),
			},
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "full_name", Value: 1}}},
		},
		ColVaultItems: {
			{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "owner_user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		},
		ColAttendance: {
			{
				Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "date", Value: 1}, {Key: "employee_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_company_day_employee"),
			},
		},
		ColCompanies: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_company_name"),
			},
		},
	}
}

func IsNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// Wrap maps driver failures that mean "the store is unreachable" onto
// DatabaseDown and leaves everything else as an Internal error.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return internal.NewDatabaseDownError(fmt.Errorf("%s: %w", op, err))
	}
	return internal.NewInternalError("storage failure", fmt.Errorf("%s: %w", op, err))
}

// Page converts offset/limit into find options sorted newest first.
func Page(offset, limit int, sortField string) *options.FindOptionsBuilder {
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: -1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
