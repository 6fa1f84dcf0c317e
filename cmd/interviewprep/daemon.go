package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/rupamsaini/interviewprep/internal/bootstrap"
	"github.com/rupamsaini/interviewprep/internal/config"
	"github.com/rupamsaini/interviewprep/internal/jobs"
	"github.com/rupamsaini/interviewprep/internal/periodic"
)

func newDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the daily notification and auto-delete jobs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runDaemon(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

func runDaemon(ctx context.Context, cfg *config.Config, out io.Writer) error {
	app := bootstrap.New()

	components, err := bootstrap.NewComponents(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap.NewComponents > %w", err)
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		return components.Close()
	})

	return app.Run(ctx, func(ctx context.Context) error {
		scheduler := periodic.NewScheduler(ctx, periodic.WithLocation(components.Location))
		daemon := jobs.NewDaemon(
			scheduler,
			components.Preferences,
			jobs.NewNotificationJob(
				components.Questions,
				components.Preferences,
				jobs.NewConsoleNotifier(out),
				time.Now,
				components.Location,
			),
			jobs.NewDeletionJob(components.Policy, components.Preferences),
			cfg.Daemon.SyncInterval,
		)
		slog.Default().Info("daemon started", "sync_interval", cfg.Daemon.SyncInterval, "location", components.Location)
		return daemon.Run(ctx)
	})
}
