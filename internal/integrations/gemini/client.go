package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"chat-relay/internal/integrations/upstream"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	model          = "gemini-pro"
)

// generateContentRequest is the request shape for the generateContent endpoint.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text *string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Client calls the Gemini generateContent endpoint. The key travels as a
// query parameter rather than a header.
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
	return "gemini"
}

func generateURL(baseURL, apiKey string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/models/" + model + ":generateContent?key=" + url.QueryEscape(apiKey)
}

// Ask returns candidates[0].content.parts[0].text.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", upstream.ErrNotConfigured
	}

	req := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: &prompt}}}},
	}

	var payload generateContentResponse
	if err := upstream.PostJSON(ctx, c.httpClient, generateURL(c.baseURL, c.apiKey), nil, req, &payload); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(payload.Candidates) == 0 {
		return "", &upstream.DecodeError{Err: errors.New("gemini: no candidates in response")}
	}
	parts := payload.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == nil {
		return "", &upstream.DecodeError{Err: errors.New("gemini: candidate has no text part")}
	}
	if *parts[0].Text == "" {
		return "", fmt.Errorf("gemini: %w", upstream.ErrNoText)
	}
	return *parts[0].Text, nil
}
