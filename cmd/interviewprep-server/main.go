package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/rupamsaini/interviewprep/internal/bootstrap"
	"github.com/rupamsaini/interviewprep/internal/config"
	"github.com/rupamsaini/interviewprep/internal/server"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "interviewprep-server",
		Short:         "Interview question service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("config.Load() > %w", err)
	}

	components, err := bootstrap.NewComponents(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap.NewComponents() > %w", err)
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		return components.Close()
	})

	srv := newHTTPServer(cfg, components)
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func newHTTPServer(cfg *config.Config, components *bootstrap.Components) *http.Server {
	handler := server.NewQuestionHandler(components.Policy, components.Questions)
	path, h := server.NewQuestionServiceHandler(handler)

	mux := http.NewServeMux()
	mux.Handle(path, h)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.CORSMiddleware(h2c.NewHandler(mux, &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
	}
}
