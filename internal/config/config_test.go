package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     filepath.Join("data", "questions.db"),
			Host:     "localhost",
			Port:     3306,
			Database: "interviewprep",
			Username: "user",
		},
		Generation: GenerationConfig{
			Provider:         "none",
			GateEnabled:      true,
			Cooldown:         time.Hour,
			Chance:           0.05,
			MaxRetryAttempts: 2,
		},
		OpenAI: OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini: GeminiConfig{Model: "gemini-2.5-flash"},
		Scraper: ScraperConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			Timeout:   10 * time.Second,
		},
		Daemon: DaemonConfig{SyncInterval: time.Minute},
		Server: ServerConfig{
			Port: 8080,
			CORS: CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		},
		Export: ExportConfig{Directory: filepath.Join("outputs", "export")},
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "custom values",
			configContent: `database:
  driver: mysql
  host: db.internal
  port: 3307
generation:
  provider: gemini
  gate_enabled: false
  cooldown: 30m
  chance: 0.5
schedule:
  timezone: Asia/Kolkata
server:
  port: 9090
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Database.Driver = "mysql"
				cfg.Database.Host = "db.internal"
				cfg.Database.Port = 3307
				cfg.Generation.Provider = "gemini"
				cfg.Generation.GateEnabled = false
				cfg.Generation.Cooldown = 30 * time.Minute
				cfg.Generation.Chance = 0.5
				cfg.Schedule.Timezone = "Asia/Kolkata"
				cfg.Server.Port = 9090
				return cfg
			},
		},
		{
			name: "partial config in working directory",
			configContent: `scraper:
  timeout: 3s
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Scraper.Timeout = 3 * time.Second
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `database:
  driver: sqlite
  invalid yaml format here [[[
`,
			useExplicitPath: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown provider",
			configContent: `generation:
  provider: claude
`,
			useExplicitPath:   true,
			wantErrorContains: []string{"invalid configuration", "provider"},
		},
		{
			name: "chance above one",
			configContent: `generation:
  chance: 1.5
`,
			useExplicitPath:   true,
			wantErrorContains: []string{"invalid configuration", "chance"},
		},
		{
			name: "unknown timezone",
			configContent: `schedule:
  timezone: Mars/Olympus_Mons
`,
			useExplicitPath:   true,
			wantErrorContains: []string{"schedule.timezone must be a valid IANA time zone"},
		},
		{
			name: "missing export template",
			configContent: `export:
  template: /nonexistent/template.md.tmpl
`,
			useExplicitPath:   true,
			wantErrorContains: []string{"export.template must be an existing and readable file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			t.Setenv("OPENAI_MODEL", "")
			t.Setenv("GEMINI_API_KEY", "")
			t.Setenv("DB_PASSWORD", "")

			tempDir := t.TempDir()
			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "interviewprep.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yml"), []byte(tt.configContent), 0644))
				}
				t.Chdir(tempDir)
			}

			got, err := Load(configPath)
			if len(tt.wantErrorContains) > 0 {
				require.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestLoad_EnvironmentSecrets(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("DB_PASSWORD", "secret")
	t.Chdir(t.TempDir())

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", got.OpenAI.APIKey)
	assert.Equal(t, "gm-test", got.Gemini.APIKey)
	assert.Equal(t, "secret", got.Database.Password)
}

func TestScheduleConfig_Location(t *testing.T) {
	loc, err := ScheduleConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = ScheduleConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = ScheduleConfig{Timezone: "Nowhere/Land"}.Location()
	assert.Error(t, err)
}
