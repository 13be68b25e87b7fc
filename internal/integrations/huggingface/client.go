package huggingface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chat-relay/internal/integrations/upstream"
)

const (
	DefaultURL = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.2"

	// instEnd closes the instruction block the model echoes back in generated_text.
	instEnd = "[/INST]</s>"
)

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceResult struct {
	GeneratedText *string `json:"generated_text"`
}

// Client calls a text-generation model on the HuggingFace inference API.
type Client struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

type Option func(*Client)

func WithURL(url string) Option {
	return func(c *Client) {
		c.url = strings.TrimSpace(url)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		url:        DefaultURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	return c
}

func (c *Client) Name() string {
	return "huggingface"
}

func wrapPrompt(prompt string) string {
	return "<s>[INST] " + prompt + " [/INST]</s>"
}

// ExtractReply drops everything up to and including the last instruction
// marker and trims the remainder.
func ExtractReply(generated string) string {
	if i := strings.LastIndex(generated, instEnd); i >= 0 {
		generated = generated[i+len(instEnd):]
	}
	return strings.TrimSpace(generated)
}

func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", upstream.ErrNotConfigured
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var results []inferenceResult
	if err := upstream.PostJSON(ctx, c.httpClient, c.url, headers, inferenceRequest{Inputs: wrapPrompt(prompt)}, &results); err != nil {
		return "", fmt.Errorf("huggingface: %w", err)
	}
	if len(results) == 0 || results[0].GeneratedText == nil {
		return "", &upstream.DecodeError{Err: errors.New("huggingface: no generated_text in response")}
	}

	reply := ExtractReply(*results[0].GeneratedText)
	if reply == "" {
		return "", fmt.Errorf("huggingface: %w", upstream.ErrNoText)
	}
	return reply, nil
}
