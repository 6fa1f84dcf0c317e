// Package testutil provides shared test helpers for creating config files and question fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rupamsaini/interviewprep/internal/question"
)

// SetupTestConfig writes a config file backed by a sqlite database under tmpDir, with generation disabled.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	return writeConfig(t, tmpDir, "none", "")
}

// SetupTestConfigWithAPIKey writes a config file using OpenAI with a fake key for tests
// that require API key validation to pass.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir string) string {
	t.Helper()
	return writeConfig(t, tmpDir, "openai", "openai:\n  api_key: fake-key-for-testing\n  model: gpt-4o-mini\n")
}

func writeConfig(t *testing.T, tmpDir, provider, extra string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "export"), 0755))

	configContent := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
generation:
  provider: %s
schedule:
  timezone: UTC
export:
  directory: %s
`,
		filepath.Join(tmpDir, "questions.db"),
		provider,
		filepath.Join(tmpDir, "export"),
	) + extra

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupBrokenConfig writes a config file that fails to parse.
func SetupBrokenConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: [\n"), 0644))
	return cfgPath
}

// QuestionOption configures optional fields of a question fixture.
type QuestionOption func(*question.Question)

func WithCategory(category string) QuestionOption {
	return func(q *question.Question) {
		q.Category = category
	}
}

func WithDifficulty(difficulty string) QuestionOption {
	return func(q *question.Question) {
		q.Difficulty = question.NormalizeDifficulty(difficulty)
	}
}

func WithSource(source question.Source) QuestionOption {
	return func(q *question.Question) {
		q.Source = source
	}
}

// WithNextReview sets the SM-2 state as if the question had been reviewed once.
func WithNextReview(next time.Time, interval int) QuestionOption {
	return func(q *question.Question) {
		q.Repetition = 1
		q.Interval = interval
		q.NextReviewDate = next
	}
}

// NewQuestion returns an unsaved local Kotlin question for the given text.
// By default the question has never been reviewed.
func NewQuestion(text string, opts ...QuestionOption) question.Question {
	q := question.NewQuestion(text, "Answer to: "+text, "Kotlin", "Junior", question.SourceLocal)
	for _, opt := range opts {
		opt(&q)
	}
	return q
}
