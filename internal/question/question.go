// Package question provides the interview question model, its vocabularies, and the question repository.
package question

import (
	"strings"
	"time"
)

const (
	// DefaultEasinessFactor is the EF a question starts with before any review.
	DefaultEasinessFactor = 2.5
	// MinEasinessFactor is the lower bound EF never goes below.
	MinEasinessFactor = 1.3

	// All is the UI token for "no constraint" in category, difficulty, and source filters.
	All = "All"
)

// Source is where a question came from.
type Source string

const (
	SourceLocal   Source = "local"
	SourceAI      Source = "ai"
	SourceScraped Source = "scraped"
)

// Categories is the fixed topic vocabulary shown to users.
var Categories = []string{
	"Kotlin",
	"Android",
	"Jetpack Compose",
	"Coroutines",
	"System Design",
	"Design Patterns",
	"Security",
	"Performance Optimization",
	"Testing & QA",
	"Networking & APIs",
}

// Difficulties is the UI-facing difficulty vocabulary.
var Difficulties = []string{"Junior", "Mid-Level", "Senior"}

const (
	// ScrapedCategory and ScrapedDifficulty are assigned to every imported web question.
	ScrapedCategory   = "Scraped"
	ScrapedDifficulty = "unknown"
)

// State is the SM-2 scheduling state of a question.
type State struct {
	Repetition     int
	EasinessFactor float64
	// Interval is in days.
	Interval int
	// NextReviewDate is zero until the first review.
	NextReviewDate time.Time
}

// Question is a single flashcard.
type Question struct {
	ID          int64
	Question    string
	Answer      string
	Category    string
	Difficulty  string
	Source      Source
	Explanation string
	CodeExample string

	LastShown  time.Time
	UserRating int
	CreatedAt  time.Time

	State
}

// NewQuestion returns an unsaved question with the default SM-2 state.
func NewQuestion(text, answer, category, difficulty string, source Source) Question {
	return Question{
		Question:   text,
		Answer:     answer,
		Category:   category,
		Difficulty: NormalizeDifficulty(difficulty),
		Source:     source,
		State: State{
			EasinessFactor: DefaultEasinessFactor,
		},
	}
}

// NormalizeDifficulty maps a UI difficulty label to the storage vocabulary, e.g. "Mid-Level" to "mid".
func NormalizeDifficulty(difficulty string) string {
	d := strings.ToLower(strings.TrimSpace(difficulty))
	d = strings.TrimSuffix(d, "-level")
	return strings.TrimSpace(d)
}

// IsAll reports whether a filter value means "no constraint".
func IsAll(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, All)
}

// ParseSource parses a source filter value. The empty source means All.
func ParseSource(value string) (Source, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return "", true
	case string(SourceLocal):
		return SourceLocal, true
	case string(SourceAI):
		return SourceAI, true
	case string(SourceScraped):
		return SourceScraped, true
	}
	return "", false
}

// Filters constrains which questions a listing or random pick may return.
// Empty or All values are unconstrained.
type Filters struct {
	Category   string
	Difficulty string
	Source     Source
}

// Matches reports whether q satisfies the filters.
func (f Filters) Matches(q Question) bool {
	if !IsAll(f.Category) && !strings.EqualFold(f.Category, q.Category) {
		return false
	}
	if !IsAll(f.Difficulty) && NormalizeDifficulty(f.Difficulty) != NormalizeDifficulty(q.Difficulty) {
		return false
	}
	if f.Source != "" && f.Source != q.Source {
		return false
	}
	return true
}

// RandomQuery is the store-level form of Filters after normalization.
// Empty fields are unconstrained.
type RandomQuery struct {
	Category   string
	Difficulty string
	Source     Source
}

// ToRandomQuery normalizes the filters for the store.
func (f Filters) ToRandomQuery() RandomQuery {
	var q RandomQuery
	if !IsAll(f.Category) {
		q.Category = strings.TrimSpace(f.Category)
	}
	if !IsAll(f.Difficulty) {
		q.Difficulty = NormalizeDifficulty(f.Difficulty)
	}
	q.Source = f.Source
	return q
}
