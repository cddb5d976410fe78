package recommender

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/angelmondragon/pcforge-backend/pkg/config"
	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

const codeInsufficientQuota = "insufficient_quota"

// OpenAI is a Recommender backed by the chat completions API in JSON mode.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds the client. A missing API key yields a recommender that
// always reports ErrNotConfigured.
func NewOpenAI(cfg config.OpenAIConfig) *OpenAI {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.GPT4o
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return &OpenAI{model: model}
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAI{client: openai.NewClientWithConfig(clientCfg), model: model}
}

// Configured reports whether an API key was supplied.
func (o *OpenAI) Configured() bool {
	return o != nil && o.client != nil
}

func (o *OpenAI) Recommend(ctx context.Context, req types.BuildRequirements) (Result, error) {
	if !o.Configured() {
		return Result{}, ErrNotConfigured
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Result{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errors.New("recommender: empty choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		content = "{}"
	}
	return decodeResult(content)
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.Type == codeInsufficientQuota || codeString(apiErr.Code) == codeInsufficientQuota {
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
		return fmt.Errorf("recommender: api error: %w", err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, reqErr.Err)
	}
	return fmt.Errorf("recommender: request failed: %w", err)
}

func codeString(code any) string {
	if s, ok := code.(string); ok {
		return s
	}
	return ""
}
