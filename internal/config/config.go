package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Generation GenerationConfig `mapstructure:"generation"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Scraper    ScraperConfig    `mapstructure:"scraper"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Daemon     DaemonConfig     `mapstructure:"daemon"`
	Server     ServerConfig     `mapstructure:"server"`
	Export     ExportConfig     `mapstructure:"export"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite mysql"`
	// Path is the sqlite database file.
	Path string `mapstructure:"path" validate:"required_if=Driver sqlite"`

	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type GenerationConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=none openai gemini"`
	// GateEnabled turns the cooldown and chance checks on. When false every request may generate.
	GateEnabled      bool          `mapstructure:"gate_enabled"`
	Cooldown         time.Duration `mapstructure:"cooldown" validate:"gte=0"`
	Chance           float64       `mapstructure:"chance" validate:"gte=0,lte=1"`
	MaxRetryAttempts uint          `mapstructure:"max_retry_attempts"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ScraperConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type ScheduleConfig struct {
	// Timezone is an IANA name. Empty means the process local zone.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`
}

type DaemonConfig struct {
	SyncInterval time.Duration `mapstructure:"sync_interval" validate:"gt=0"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gt=0,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ExportConfig struct {
	// Template is optional. The embedded template is used when empty.
	Template  string `mapstructure:"template" validate:"omitempty,file"`
	Directory string `mapstructure:"directory"`
}

// Location returns the configured time zone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation(%s) > %w", c.Timezone, err)
	}
	return loc, nil
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/interviewprep")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join("data", "questions.db"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "interviewprep")
	v.SetDefault("database.username", "user")

	v.SetDefault("generation.provider", "none")
	v.SetDefault("generation.gate_enabled", true)
	v.SetDefault("generation.cooldown", time.Hour)
	v.SetDefault("generation.chance", 0.05)
	v.SetDefault("generation.max_retry_attempts", 2)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("scraper.timeout", 10*time.Second)

	v.SetDefault("schedule.timezone", "")
	v.SetDefault("daemon.sync_interval", time.Minute)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("export.template", "")
	v.SetDefault("export.directory", filepath.Join("outputs", "export"))

	// API keys come from the environment only
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("openai.model", "OPENAI_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_MODEL environment variable: %w", err)
	}
	if err := v.BindEnv("gemini.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// Load reads configFile, or config.yml from the default search paths when empty.
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}
