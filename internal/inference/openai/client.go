package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/rupamsaini/interviewprep/internal/inference"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
	apiKeySet        bool
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
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

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	// Network errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	// 5xx and rate limiting
	if strings.Contains(errStr, "response error 5") || strings.Contains(errStr, "response error 429") {
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
	if err := retry.Do(
		func() error {
			response, err := client.generateQuestion(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				slog.Default().Info("Retrying OpenAI API call", "category", params.Category, "error", err)
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return inference.GeneratedQuestion{}, err
	}
	return result, nil
}

func (client *Client) getRequestBody(params inference.GenerateQuestionRequest) ChatCompletionRequest {
	return ChatCompletionRequest{
		Model: client.model,
		Messages: []Message{
			{
				Role:    RoleSystem,
				Content: "You are an experienced Android engineering interviewer. Reply with a single JSON object only.",
			},
			{
				Role:    RoleUser,
				Content: inference.QuestionPrompt(params),
			},
		},
		Temperature:    0.9,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}
}

func (client *Client) generateQuestion(
	ctx context.Context,
	params inference.GenerateQuestionRequest,
) (inference.GeneratedQuestion, error) {
	requestBody := client.getRequestBody(params)

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.GeneratedQuestion{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.GeneratedQuestion{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.GeneratedQuestion{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return inference.GeneratedQuestion{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"request", requestBody,
		"response", responseBody,
	)

	generated, err := inference.ParseGeneratedQuestion(content)
	if err != nil {
		return inference.GeneratedQuestion{}, fmt.Errorf("inference.ParseGeneratedQuestion > %w", err)
	}
	return generated, nil
}
