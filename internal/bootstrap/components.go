package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rupamsaini/interviewprep/internal/config"
	"github.com/rupamsaini/interviewprep/internal/database"
	"github.com/rupamsaini/interviewprep/internal/inference"
	"github.com/rupamsaini/interviewprep/internal/inference/gemini"
	"github.com/rupamsaini/interviewprep/internal/inference/openai"
	"github.com/rupamsaini/interviewprep/internal/preferences"
	"github.com/rupamsaini/interviewprep/internal/question"
	"github.com/rupamsaini/interviewprep/internal/review"
	"github.com/rupamsaini/interviewprep/internal/scraper"
	"github.com/rupamsaini/interviewprep/internal/seed"
	"github.com/rupamsaini/interviewprep/internal/selection"
	"github.com/rupamsaini/interviewprep/schemas"
)

const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// NewGenerator returns the configured generator and a function releasing it.
func NewGenerator(cfg config.Config) (inference.Generator, func() error, error) {
	noop := func() error { return nil }
	retries := cfg.Generation.MaxRetryAttempts

	switch cfg.Generation.Provider {
	case ProviderNone, "":
		return inference.Disabled{}, noop, nil
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, noop, fmt.Errorf("OPENAI_API_KEY environment variable is required for provider %s", ProviderOpenAI)
		}
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, retries)
		return client, client.Close, nil
	case ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, noop, fmt.Errorf("GEMINI_API_KEY environment variable is required for provider %s", ProviderGemini)
		}
		client := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, retries)
		return client, client.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown generation provider %q", cfg.Generation.Provider)
}

// Components holds everything built from a configuration.
type Components struct {
	Config      *config.Config
	DB          *sqlx.DB
	Questions   question.Repository
	Preferences *preferences.Preferences
	Policy      *selection.Policy
	Importer    *seed.Importer
	Location    *time.Location

	closers []func() error
}

// NewComponents opens and migrates the database, builds the policy, and imports the bundled dataset on first use.
func NewComponents(ctx context.Context, cfg *config.Config) (*Components, error) {
	location, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("cfg.Schedule.Location > %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open > %w", err)
	}
	c := &Components{
		Config:   cfg,
		DB:       db,
		Location: location,
		closers:  []func() error{db.Close},
	}
	if err := database.Migrate(ctx, db, schemas.Migrations); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("database.Migrate > %w", err)
	}

	generator, closeGenerator, err := NewGenerator(*cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.closers = append(c.closers, closeGenerator)

	c.Questions = question.NewDBRepository(db)
	c.Preferences = preferences.New(preferences.NewDBStore(db))
	c.Policy = selection.NewPolicy(
		c.Questions,
		c.Preferences,
		generator,
		scraper.NewHTTPScraper(scraper.Config{
			UserAgent: cfg.Scraper.UserAgent,
			Timeout:   cfg.Scraper.Timeout,
		}),
		review.NewScheduler(),
		selection.WithGate(selection.GateConfig{
			Enabled:  cfg.Generation.GateEnabled,
			Cooldown: cfg.Generation.Cooldown,
			Chance:   cfg.Generation.Chance,
		}),
		selection.WithLocation(location),
	)

	c.Importer = seed.NewImporter(c.Questions, c.Preferences)
	if _, err := c.Importer.ImportIfNeeded(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("importer.ImportIfNeeded > %w", err)
	}
	return c, nil
}

// Close releases resources in reverse order of acquisition.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
