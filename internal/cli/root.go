package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"outreach-backend/internal/bootstrap"
	"outreach-backend/internal/payments"
	"outreach-backend/internal/profiles"
	"outreach-backend/internal/shared/config"
	"outreach-backend/internal/shared/storage/db"
)

const app = "outreachctl"

// Runtime is what commands operate on.
type Runtime struct {
	Config   config.Config
	DB       *sql.DB
	Profiles *profiles.Service
	Payments *payments.Service
}

// Close releases the database pool.
func (r *Runtime) Close() {
	if r != nil && r.DB != nil {
		_ = r.DB.Close()
	}
}

// Opener builds a Runtime from configuration.
type Opener func(ctx context.Context, cfg config.Config) (*Runtime, error)

// OpenDatabase connects to DATABASE_URL and wires Postgres-backed services.
func OpenDatabase(ctx context.Context, cfg config.Config) (*Runtime, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required (set it or pass --database-url)")
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return nil, err
	}
	store, err := bootstrap.BuildStore(ctx, cfg)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	profileSvc := profiles.NewService(&profiles.PGRepo{DB: sqlDB}, cfg.FreeCredits, false)
	return &Runtime{
		Config:   cfg,
		DB:       sqlDB,
		Profiles: profileSvc,
		Payments: payments.NewService(&payments.PGRepo{DB: sqlDB}, store, profileSvc),
	}, nil
}

type cli struct {
	v    *viper.Viper
	open Opener
}

// NewRootCommand assembles the command tree. open is called lazily by commands that need data.
func NewRootCommand(open Opener) *cobra.Command {
	c := &cli{v: viper.New(), open: open}

	root := &cobra.Command{
		Use:           app,
		Short:         app + " administers profiles, payments and migrations of the outreach backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("database-url", "", "Postgres connection string (default $DATABASE_URL)")
	_ = c.v.BindPFlag("database_url", root.PersistentFlags().Lookup("database-url"))

	root.AddCommand(
		c.migrateCommand(),
		c.profilesCommand(),
		c.paymentsCommand(),
		c.tokenCommand(),
	)
	return root
}

// Execute runs the CLI against the configured database.
func Execute(ctx context.Context) error {
	return NewRootCommand(OpenDatabase).ExecuteContext(ctx)
}

func (c *cli) config() config.Config {
	return config.LoadFrom(c.v)
}

func (c *cli) runtime(cmd *cobra.Command) (*Runtime, error) {
	rt, err := c.open(cmd.Context(), c.config())
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return rt, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
