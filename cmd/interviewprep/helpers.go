package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rupamsaini/interviewprep/internal/bootstrap"
	"github.com/rupamsaini/interviewprep/internal/config"
)

// withComponents loads the configuration, builds the components, and releases them after fn returns.
func withComponents(ctx context.Context, fn func(c *bootstrap.Components) error) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	components, err := bootstrap.NewComponents(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap.NewComponents > %w", err)
	}
	defer func() {
		if err := components.Close(); err != nil {
			slog.Default().Warn("failed to close components", "error", err)
		}
	}()
	return fn(components)
}
