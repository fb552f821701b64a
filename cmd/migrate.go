package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply db/migrations (postgres) or create indexes (mongo)",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Database.Driver == internal.DriverMongo {
		client, err := mongodb.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer client.Close(context.Background())
		if err := client.EnsureIndexes(ctx); err != nil {
			return err
		}
		fmt.Println("mongodb indexes are up to date")
		return nil
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
