// Package seed loads the bundled question dataset and other YAML question files.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rupamsaini/interviewprep/internal/preferences"
	"github.com/rupamsaini/interviewprep/internal/question"
)

//go:embed questions.yml
var bundledQuestions []byte

// Record is one question in a dataset file.
type Record struct {
	Question    string `yaml:"question"`
	Answer      string `yaml:"answer"`
	Category    string `yaml:"category"`
	Difficulty  string `yaml:"difficulty"`
	Source      string `yaml:"source,omitempty"`
	Explanation string `yaml:"explanation,omitempty"`
	CodeExample string `yaml:"codeExample,omitempty"`
}

func (r Record) toQuestion() (question.Question, error) {
	if strings.TrimSpace(r.Question) == "" || strings.TrimSpace(r.Answer) == "" {
		return question.Question{}, errors.New("question and answer are required")
	}
	source := question.SourceLocal
	if r.Source != "" {
		parsed, ok := question.ParseSource(r.Source)
		if !ok || parsed == "" {
			return question.Question{}, fmt.Errorf("unknown source %q", r.Source)
		}
		source = parsed
	}
	q := question.NewQuestion(
		strings.TrimSpace(r.Question),
		strings.TrimSpace(r.Answer),
		strings.TrimSpace(r.Category),
		r.Difficulty,
		source,
	)
	q.Explanation = strings.TrimSpace(r.Explanation)
	q.CodeExample = strings.TrimRight(r.CodeExample, "\n")
	return q, nil
}

// Load decodes a YAML list of records.
func Load(r io.Reader) ([]question.Question, error) {
	var records []Record
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("yaml.Decode > %w", err)
	}

	questions := make([]question.Question, 0, len(records))
	for i, record := range records {
		q, err := record.toQuestion()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Bundled returns the questions shipped with the binary.
func Bundled() ([]question.Question, error) {
	return Load(bytes.NewReader(bundledQuestions))
}

// Importer writes datasets into the question store.
type Importer struct {
	repository  question.Repository
	preferences *preferences.Preferences
}

func NewImporter(repository question.Repository, prefs *preferences.Preferences) *Importer {
	return &Importer{
		repository:  repository,
		preferences: prefs,
	}
}

// ImportIfNeeded imports the bundled dataset the first time it is called against a store.
func (importer *Importer) ImportIfNeeded(ctx context.Context) (int, error) {
	imported, err := importer.preferences.DatasetImported(ctx)
	if err != nil {
		return 0, fmt.Errorf("preferences.DatasetImported > %w", err)
	}
	if imported {
		return 0, nil
	}

	questions, err := Bundled()
	if err != nil {
		return 0, fmt.Errorf("Bundled > %w", err)
	}
	count, err := importer.Import(ctx, questions)
	if err != nil {
		return 0, err
	}
	if err := importer.preferences.SetDatasetImported(ctx, true); err != nil {
		return count, fmt.Errorf("preferences.SetDatasetImported > %w", err)
	}
	slog.Default().Info("imported bundled questions", "count", count)
	return count, nil
}

// Import stores questions in one transaction.
func (importer *Importer) Import(ctx context.Context, questions []question.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	if err := importer.repository.InsertAll(ctx, questions); err != nil {
		return 0, fmt.Errorf("repository.InsertAll > %w", err)
	}
	return len(questions), nil
}
