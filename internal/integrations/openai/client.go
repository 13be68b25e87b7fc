package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chat-relay/internal/domain"
	"chat-relay/internal/integrations/upstream"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
	systemPrompt   = "You are a helpful assistant."
	maxTokens      = 500
)

// chatRequest is the request shape for the Chat Completions endpoint.
type chatRequest struct {
	Model     string               `json:"model"`
	Messages  []domain.ChatMessage `json:"messages"`
	MaxTokens int                  `json:"max_tokens"`
}

// chatResponse is the minimal response shape returned by the Chat Completions endpoint.
type chatResponse struct {
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client is a focused OpenAI-compatible client for chat completions.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client. An empty apiKey yields a client whose Ask
// always reports upstream.ErrNotConfigured without touching the network.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string {
	return "openai"
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// Ask sends prompt as a single user turn and returns choices[0].message.content.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", upstream.ErrNotConfigured
	}

	req := chatRequest{
		Model: defaultModel,
		Messages: []domain.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var payload chatResponse
	if err := upstream.PostJSON(ctx, c.httpClient, chatURL(c.baseURL), headers, req, &payload); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", &upstream.DecodeError{Err: errors.New("openai: no choices in response")}
	}
	content := payload.Choices[0].Message.Content
	if content == nil {
		return "", &upstream.DecodeError{Err: errors.New("openai: choice has no content")}
	}
	if *content == "" {
		return "", fmt.Errorf("openai: %w", upstream.ErrNoText)
	}
	return *content, nil
}
