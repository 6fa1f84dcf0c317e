// Package gemini generates questions with the Gemini generateContent REST API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/rupamsaini/interviewprep/internal/inference"
)

const DefaultModel = "gemini-2.5-flash"

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
	apiKeySet        bool
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	if model == "" {
		model = DefaultModel
	}
	client := resty.New()
	client.SetBaseURL("https://generativelanguage.googleapis.com/v1beta")
	client.SetHeader("x-goog-api-key", apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
		apiKeySet:        apiKey != "",
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	Temperature      float32 `json:"temperature,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type GenerateContentResponse struct {
	Candidates    []Candidate    `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Text joins the text parts of the first candidate.
func (r GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.code, e.body)
}

func isRetryableError(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

// GenerateQuestion implements the inference.Generator interface
func (client *Client) GenerateQuestion(
	ctx context.Context,
	params inference.GenerateQuestionRequest,
) (inference.GeneratedQuestion, error) {
	if !client.apiKeySet {
		return inference.GeneratedQuestion{}, inference.ErrMissingAPIKey
	}

	var result inference.GeneratedQuestion
	err := retry.Do(
		func() error {
			generated, err := client.generateQuestion(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = generated
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Info("Retrying Gemini API call", "attempt", n+1, "category", params.Category, "error", err)
		}),
	)
	if err != nil {
		return inference.GeneratedQuestion{}, err
	}
	return result, nil
}

func (client *Client) generateQuestion(
	ctx context.Context,
	params inference.GenerateQuestionRequest,
) (inference.GeneratedQuestion, error) {
	requestBody := GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: inference.QuestionPrompt(params)}}},
		},
		GenerationConfig: &GenerationConfig{
			Temperature:      0.9,
			ResponseMimeType: "application/json",
		},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&GenerateContentResponse{}).
		Post(fmt.Sprintf("/models/%s:generateContent", client.model))
	if err != nil {
		return inference.GeneratedQuestion{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.GeneratedQuestion{}, &statusError{code: response.StatusCode(), body: response.String()}
	}

	responseBody := response.Result().(*GenerateContentResponse)
	text := responseBody.Text()
	if text == "" {
		return inference.GeneratedQuestion{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("gemini response content",
		"model", client.model,
		"response", responseBody,
	)

	generated, err := inference.ParseGeneratedQuestion(text)
	if err != nil {
		return inference.GeneratedQuestion{}, fmt.Errorf("inference.ParseGeneratedQuestion > %w", err)
	}
	return generated, nil
}
