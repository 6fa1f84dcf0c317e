package question

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDifficulty(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Junior", want: "junior"},
		{input: "Mid-Level", want: "mid"},
		{input: "  Senior ", want: "senior"},
		{input: "mid", want: "mid"},
		{input: "Senior-Level", want: "senior"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDifficulty(tt.input))
		})
	}
}

func TestFilters_ToRandomQuery(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    RandomQuery
	}{
		{
			name:    "neither constrained",
			filters: Filters{Category: All, Difficulty: All},
			want:    RandomQuery{},
		},
		{
			name:    "category only",
			filters: Filters{Category: "Kotlin", Difficulty: "All"},
			want:    RandomQuery{Category: "Kotlin"},
		},
		{
			name:    "difficulty only",
			filters: Filters{Category: "", Difficulty: "Mid-Level"},
			want:    RandomQuery{Difficulty: "mid"},
		},
		{
			name:    "both constrained",
			filters: Filters{Category: "Security", Difficulty: "Senior", Source: SourceAI},
			want:    RandomQuery{Category: "Security", Difficulty: "senior", Source: SourceAI},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.ToRandomQuery())
		})
	}
}

func TestFilters_Matches(t *testing.T) {
	q := Question{Category: "Kotlin", Difficulty: "mid", Source: SourceLocal}

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{name: "empty filters", filters: Filters{}, want: true},
		{name: "category case insensitive", filters: Filters{Category: "kotlin"}, want: true},
		{name: "ui difficulty label", filters: Filters{Difficulty: "Mid-Level"}, want: true},
		{name: "other category", filters: Filters{Category: "Android"}, want: false},
		{name: "other source", filters: Filters{Source: SourceAI}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Matches(q))
		})
	}
}

func TestParseSource(t *testing.T) {
	got, ok := ParseSource("AI")
	assert.True(t, ok)
	assert.Equal(t, SourceAI, got)

	got, ok = ParseSource("All")
	assert.True(t, ok)
	assert.Equal(t, Source(""), got)

	_, ok = ParseSource("book")
	assert.False(t, ok)
}

func TestDeletionPredicate_Matches(t *testing.T) {
	midnight := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	today := Question{Category: "Kotlin", Difficulty: "senior", CreatedAt: midnight.Add(2 * time.Hour)}
	yesterday := Question{Category: "Kotlin Basics", Difficulty: "junior", CreatedAt: midnight.Add(-time.Minute)}

	tests := []struct {
		name          string
		pred          DeletionPredicate
		wantToday     bool
		wantYesterday bool
	}{
		{name: "all", pred: DeletionPredicate{Kind: DeleteAll}, wantToday: true, wantYesterday: true},
		{name: "none", pred: DeletionPredicate{Kind: DeleteNone}},
		{name: "created since midnight", pred: DeletionPredicate{Kind: DeleteCreatedSince, Since: midnight}, wantToday: true},
		{name: "exact category", pred: DeletionPredicate{Kind: DeleteCategory, Value: "Kotlin"}, wantToday: true},
		{name: "difficulty", pred: DeletionPredicate{Kind: DeleteDifficulty, Value: "junior"}, wantYesterday: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantToday, tt.pred.Matches(today))
			assert.Equal(t, tt.wantYesterday, tt.pred.Matches(yesterday))
		})
	}
}
