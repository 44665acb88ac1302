// Package cli wires configuration, storage and services into the
// sales-dashboard command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sales-dashboard/config"
	"sales-dashboard/models"
	"sales-dashboard/services"
	"sales-dashboard/storage"
	"sales-dashboard/utils"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sales-dashboard",
		Short:         "Import a sales export and explore it with role-based access",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newShellCmd())
	return cmd
}

// Execute runs the root command and exits with a code derived from the error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// app holds the long-lived dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	store    *storage.PostgresStore
	importer *services.Importer
	engine   *services.QueryEngine
	users    *services.UserRepository
	policy   *services.Policy
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	logger := utils.NewLogger()
	logger.SetLevel(cfg.LogLevel)

	if err := models.ValidateSchema(); err != nil {
		return nil, err
	}

	seed, err := config.LoadUsers(cfg.UsersFile)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	policy, err := services.NewPolicy()
	if err != nil {
		return nil, err
	}

	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: time.Second, Logger: logger}
	store, err := storage.NewPostgresStore(ctx, cfg.DBDriver, cfg.DSN(), retry)
	if err != nil {
		logger.Error("[app] Failed to connect to PostgreSQL: %v", err)
		logger.Error("[app] Make sure the database is running: docker compose up -d")
		return nil, withCode(exitDB, err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		importer: services.NewImporter(store, logger),
		engine:   services.NewQueryEngine(store, logger),
		users:    services.NewUserRepository(seed, policy),
		policy:   policy,
	}, nil
}

// ensureImported runs the start-up import. Failures are logged and returned;
// callers other than the import command carry on with what is queryable.
func (a *app) ensureImported(ctx context.Context, source string) (services.ImportResult, error) {
	if source == "" {
		source = a.cfg.SourcePath
	}
	res, err := a.importer.EnsureImported(ctx, source)
	if err != nil {
		a.logger.Warn("[app] Import did not load data: %v", err)
	}
	return res, err
}

func (a *app) newSession() *services.Session {
	return services.NewSession(a.users, a.policy, a.engine, a.logger)
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("[app] Closing database: %v", err)
	}
}
