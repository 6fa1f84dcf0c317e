package inference

import (
	"context"
	"errors"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_generator.go -package=mock_inference

// Generator creates interview questions with a text-generation backend.
type Generator interface {
	GenerateQuestion(ctx context.Context, params GenerateQuestionRequest) (GeneratedQuestion, error)
}

// GenerateQuestionRequest holds the topic and UI difficulty label for one question
type GenerateQuestionRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// GeneratedQuestion is the JSON object a backend is asked to return
type GeneratedQuestion struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
	CodeExample string `json:"codeExample,omitempty"`
}

const (
	DefaultMaxRetryAttempts = 2
)

var (
	// ErrMalformedResponse is returned when the backend output is not a usable question.
	ErrMalformedResponse = errors.New("malformed generator response")
	// ErrMissingAPIKey is returned by backends configured without credentials.
	ErrMissingAPIKey = errors.New("generator API key is not configured")
	// ErrDisabled is returned by Disabled.
	ErrDisabled = errors.New("question generation is disabled")
)

// Disabled is a Generator that always fails, used when no provider is configured.
type Disabled struct{}

func (Disabled) GenerateQuestion(context.Context, GenerateQuestionRequest) (GeneratedQuestion, error) {
	return GeneratedQuestion{}, ErrDisabled
}
