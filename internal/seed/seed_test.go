package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_question "github.com/rupamsaini/interviewprep/internal/mocks/question"
	"github.com/rupamsaini/interviewprep/internal/preferences"
	"github.com/rupamsaini/interviewprep/internal/question"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []question.Question
		wantErr string
	}{
		{
			name: "defaults to local source",
			input: `
- question: What is a lambda?
  answer: An anonymous function.
  category: Kotlin
  difficulty: Mid-Level
  codeExample: |
    val twice = { x: Int -> x * 2 }
`,
			want: []question.Question{
				{
					Question:    "What is a lambda?",
					Answer:      "An anonymous function.",
					Category:    "Kotlin",
					Difficulty:  "mid",
					Source:      question.SourceLocal,
					CodeExample: "val twice = { x: Int -> x * 2 }",
					State:       question.State{EasinessFactor: question.DefaultEasinessFactor},
				},
			},
		},
		{
			name: "explicit source",
			input: `
- question: What is DNS?
  answer: Name resolution.
  category: Networking & APIs
  difficulty: junior
  source: ai
`,
			want: []question.Question{
				{
					Question:   "What is DNS?",
					Answer:     "Name resolution.",
					Category:   "Networking & APIs",
					Difficulty: "junior",
					Source:     question.SourceAI,
					State:      question.State{EasinessFactor: question.DefaultEasinessFactor},
				},
			},
		},
		{
			name:  "empty file",
			input: "",
		},
		{
			name: "missing answer",
			input: `
- question: What is DNS?
  category: Networking & APIs
`,
			wantErr: "record 1: question and answer are required",
		},
		{
			name: "unknown source",
			input: `
- question: Q?
  answer: A
  source: book
`,
			wantErr: `unknown source "book"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBundled(t *testing.T) {
	got, err := Bundled()
	require.NoError(t, err)
	require.NotEmpty(t, got)

	categories := map[string]bool{}
	for _, q := range got {
		assert.NotEmpty(t, q.Question)
		assert.NotEmpty(t, q.Answer)
		assert.Contains(t, []string{"junior", "mid", "senior"}, q.Difficulty)
		assert.Equal(t, question.SourceLocal, q.Source)
		categories[q.Category] = true
	}
	for _, category := range question.Categories {
		assert.True(t, categories[category], "no bundled question for %s", category)
	}
}

func TestImporter_ImportIfNeeded(t *testing.T) {
	ctx := context.Background()

	t.Run("imports once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_question.NewMockRepository(ctrl)
		prefs := preferences.New(preferences.NewMemoryStore())

		bundled, err := Bundled()
		require.NoError(t, err)
		repo.EXPECT().InsertAll(gomock.Any(), gomock.Len(len(bundled))).Return(nil).Times(1)

		importer := NewImporter(repo, prefs)
		count, err := importer.ImportIfNeeded(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(bundled), count)

		count, err = importer.ImportIfNeeded(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("failure leaves the flag unset", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_question.NewMockRepository(ctrl)
		prefs := preferences.New(preferences.NewMemoryStore())
		repo.EXPECT().InsertAll(gomock.Any(), gomock.Any()).Return(errors.New("constraint failed"))

		_, err := NewImporter(repo, prefs).ImportIfNeeded(ctx)
		assert.Error(t, err)

		imported, err := prefs.DatasetImported(ctx)
		require.NoError(t, err)
		assert.False(t, imported)
	})
}
