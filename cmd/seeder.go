package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/permission"
	"github.com/frahmantamala/office-hr/internal/user"
	"github.com/frahmantamala/office-hr/pkg/logger"
)

var (
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create the first accounts of a company",
		Long: `Create an active account for a company so it can sign in and approve signups.
Run it once per bootstrap account; an existing email is left untouched.`,
		RunE: runSeed,
	}
	seedCompany string
	seedEmail   string
	seedName    string
	seedRole    string
	seedPin     string
)

func init() {
	seedCmd.Flags().StringVar(&seedCompany, "company", "", "company id (required)")
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "login email (required)")
	seedCmd.Flags().StringVar(&seedName, "name", "Administrator", "full name")
	seedCmd.Flags().StringVar(&seedRole, "role", permission.RoleSuperuser, "role key")
	seedCmd.Flags().StringVar(&seedPin, "pin", "", "login PIN (required)")
	_ = seedCmd.MarkFlagRequired("company")
	_ = seedCmd.MarkFlagRequired("email")
	_ = seedCmd.MarkFlagRequired("pin")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Env,
		logger.WithFormat(cfg.Observability.Logging.Format),
		logger.WithLevel(cfg.Observability.Logging.Level))
	log := logger.LoggerWrapper()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	repos, err := openRepositories(ctx, cfg.Database)
	if err != nil {
		return err
	}
	app := newApplication(cfg, repos, log)
	defer func() {
		if err := app.Shutdown(context.Background()); err != nil {
			log.Error("seed shutdown", "error", err)
		}
	}()

	seeder := internal.Identity{CompanyID: seedCompany, UserID: "seed", Role: permission.RoleSuperuser}
	ctx = internal.ContextWithIdentity(ctx, seeder)

	created, err := seedUser(ctx, app.Users, seeder, user.CreateUserDTO{
		FullName: seedName,
		Email:    seedEmail,
		RoleKey:  seedRole,
		Pin:      seedPin,
	})
	if err != nil {
		return err
	}
	if created == nil {
		fmt.Printf("user %s already exists in company %s\n", seedEmail, seedCompany)
		return nil
	}
	fmt.Printf("seeded %s user %s (%s)\n", created.RoleKey, created.Email, created.ID)
	return nil
}

// seedUser returns nil without error when the email is already taken.
func seedUser(ctx context.Context, users *user.Service, actor internal.Identity, dto user.CreateUserDTO) (*user.User, error) {
	created, err := users.Create(ctx, actor, dto)
	if errors.Is(err, user.ErrEmailExists) {
		return nil, nil
	}
	return created, err
}
