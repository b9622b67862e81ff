package serve

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/cli/cmd"
	"github.com/salesdesk/salesdesk/cli/helpers"
	"github.com/salesdesk/salesdesk/engine/infra/server"
	"github.com/salesdesk/salesdesk/engine/infra/sqlite"
	"github.com/salesdesk/salesdesk/pkg/config"
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
)

const productionEnvironment = "production"

// NewServeCommand creates the command that runs the development backend.
func NewServeCommand() *cobra.Command {
	var seed bool
	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the CRM development backend",
		Long: `Run the HTTP backend the dashboard commands talk to, backed by SQLite.
Use --seed to fill an empty database with demo accounts and estimates.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			handler := func(ctx context.Context, _ *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
				return run(ctx, seed)
			}
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{JSON: handler}, args)
		},
	}
	command.Flags().BoolVar(&seed, "seed", false, "Seed demo data when the database is empty")
	return command
}

func run(ctx context.Context, seed bool) error {
	log := logger.FromContext(ctx)
	cfg := config.FromContext(ctx)
	if cfg.Runtime.Environment == productionEnvironment {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Server.CORSEnabled {
			log.Warn("CORS is enabled in production; set server.cors_enabled=false")
		}
	}
	if err := helpers.EnsurePortAvailable(ctx, cfg.Server.Host, cfg.Server.Port); err != nil {
		return err
	}
	store, err := sqlite.NewStore(ctx, &sqlite.Config{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	})
	if err != nil {
		return err
	}
	defer store.Close()
	srv, err := server.NewServer(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if _, err := srv.Handler(); err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	if seed {
		res, err := server.Seed(ctx, srv.State())
		if err != nil {
			return err
		}
		if !res.Skipped {
			log.Info("Demo accounts ready",
				"admin", res.AdminID, "staff", res.StaffID, "customer", res.CustomerID)
		}
	}
	return srv.Run()
}
