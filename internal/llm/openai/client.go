package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"outreach-backend/internal/llm"
	"outreach-backend/internal/shared/telemetry"
)

const providerName = "openai"

// Client implements llm.Client against any OpenAI-compatible chat completions API.
type Client struct {
	api   *goopenai.Client
	model string
}

// Options configures the client. BaseURL selects the gateway; empty means api.openai.com.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient constructs a new chat completions client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	cfg := goopenai.DefaultConfig(opts.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	cfg.HTTPClient = httpClient
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: opts.Model}, nil
}

// Complete sends the system and user messages and returns the first choice's content.
// A response without choices yields an empty string.
func (c *Client) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: prompt.System})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: prompt.User})

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: prompt.Temperature,
	})
	if err != nil {
		return "", classify(err)
	}

	telemetry.Info("llm.response", map[string]any{
		"provider":          providerName,
		"model":             c.model,
		"duration_ms":       time.Since(start).Milliseconds(),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	})
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return llm.ClassifyStatus(providerName, apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return llm.ClassifyStatus(providerName, reqErr.HTTPStatusCode, body, err)
	}
	return llm.ClassifyStatus(providerName, 0, "", err)
}

var _ llm.Client = (*Client)(nil)
