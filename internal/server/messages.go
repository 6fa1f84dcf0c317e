package server

import (
	"time"

	"github.com/rupamsaini/interviewprep/internal/question"
)

const (
	SourceModeAuto  = "auto"
	SourceModeLocal = "local"
	SourceModeAI    = "ai"
)

type NextQuestionRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	// Source is auto, local, or ai. Empty means auto.
	Source string `json:"source" validate:"omitempty,oneof=auto local ai"`
	Force  bool   `json:"force"`
}

type NextQuestionResponse struct {
	// Question is absent when nothing matched.
	Question *Question `json:"question,omitempty"`
}

type SubmitReviewRequest struct {
	ID      int64 `json:"id" validate:"gt=0"`
	Quality *int  `json:"quality" validate:"required,gte=0,lte=5"`
}

type SubmitReviewResponse struct {
	Question Question `json:"question"`
}

type ListQuestionsRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Source     string `json:"source"`
}

type ListQuestionsResponse struct {
	Questions []Question `json:"questions"`
}

type DeleteQuestionsRequest struct {
	Scope string `json:"scope" validate:"required"`
}

type DeleteQuestionsResponse struct {
	Deleted int64  `json:"deleted"`
	Label   string `json:"label"`
}

type ImportQuestionsRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

type ImportQuestionsResponse struct {
	Imported int `json:"imported"`
}

// Question is the wire form of question.Question. Times are RFC 3339 and omitted when unset.
type Question struct {
	ID             int64   `json:"id"`
	Question       string  `json:"question"`
	Answer         string  `json:"answer"`
	Category       string  `json:"category"`
	Difficulty     string  `json:"difficulty"`
	Source         string  `json:"source"`
	Explanation    string  `json:"explanation,omitempty"`
	CodeExample    string  `json:"codeExample,omitempty"`
	Repetition     int     `json:"repetition"`
	EasinessFactor float64 `json:"easinessFactor"`
	Interval       int     `json:"interval"`
	NextReviewDate string  `json:"nextReviewDate,omitempty"`
	LastShown      string  `json:"lastShown,omitempty"`
	UserRating     int     `json:"userRating"`
	CreatedAt      string  `json:"createdAt,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toMessage(q question.Question) Question {
	return Question{
		ID:             q.ID,
		Question:       q.Question,
		Answer:         q.Answer,
		Category:       q.Category,
		Difficulty:     q.Difficulty,
		Source:         string(q.Source),
		Explanation:    q.Explanation,
		CodeExample:    q.CodeExample,
		Repetition:     q.Repetition,
		EasinessFactor: q.EasinessFactor,
		Interval:       q.Interval,
		NextReviewDate: formatTime(q.NextReviewDate),
		LastShown:      formatTime(q.LastShown),
		UserRating:     q.UserRating,
		CreatedAt:      formatTime(q.CreatedAt),
	}
}
