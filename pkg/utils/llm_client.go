package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GenerationParams are the per-call knobs of the text backend. Extraction
// tasks run cold; the conversational turn runs warmer.
type GenerationParams struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

func ExtractionParams() GenerationParams {
	return GenerationParams{Temperature: 0.3, TopK: 40, TopP: 0.95, MaxOutputTokens: 2000}
}

func ConversationParams() GenerationParams {
	return GenerationParams{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 2048}
}

// LLMClientInterface submits one prompt and returns the raw completion text.
// It performs no retries; callers decide that per flow.
type LLMClientInterface interface {
	GenerateText(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// GeminiLLMClient implements LLMClientInterface using Google's Gemini models.
type GeminiLLMClient struct {
	client *genai.Client
	model  string
}

func NewGeminiLLMClient(apiKey, model string) (*GeminiLLMClient, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiLLMClient{client: client, model: model}, nil
}

func (c *GeminiLLMClient) GenerateText(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(params.Temperature)
	m.SetTopK(params.TopK)
	m.SetTopP(params.TopP)
	m.SetMaxOutputTokens(params.MaxOutputTokens)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok || strings.TrimSpace(string(text)) == "" {
		return "", ErrEmptyResponse
	}
	return string(text), nil
}

func (c *GeminiLLMClient) Close() error { return c.client.Close() }

func classifyGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 429 || strings.Contains(gerr.Body, "RESOURCE_EXHAUSTED") {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, gerr.Message)
		}
		return &APIError{StatusCode: gerr.Code, Body: gerr.Body}
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// OpenAILLMClient implements LLMClientInterface using chat completions.
type OpenAILLMClient struct {
	client *openai.Client
	model  string
}

func NewOpenAILLMClient(apiKey, model string) *OpenAILLMClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAILLMClient{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAILLMClient) GenerateText(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   int(params.MaxOutputTokens),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var aerr *openai.APIError
	if errors.As(err, &aerr) {
		if aerr.HTTPStatusCode == 429 {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, aerr.Message)
		}
		return &APIError{StatusCode: aerr.HTTPStatusCode, Body: aerr.Message}
	}

	var rerr *openai.RequestError
	if errors.As(err, &rerr) {
		if rerr.HTTPStatusCode == 429 {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, rerr.Err)
		}
		return &APIError{StatusCode: rerr.HTTPStatusCode, Body: rerr.Error()}
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// NewLLMClient builds a client for the configured provider.
func NewLLMClient(provider, apiKey, model string) (LLMClientInterface, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAILLMClient(apiKey, model), nil
	case "gemini":
		return NewGeminiLLMClient(apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s. Use 'openai' or 'gemini'", provider)
	}
}
