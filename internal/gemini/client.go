// Package gemini generates podcast scripts through the Google Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lurkingpods/backend/internal/domain"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-2.0-flash"
	defaultHTTPTimeout = 2 * time.Minute
)

// Client calls the Gemini generateContent endpoint and parses the returned
// script JSON.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the Gemini client.
type Option func(*Client)

// WithBaseURL overrides the API base, used by tests to point at a local server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimRight(strings.TrimSpace(base), "/")
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Gemini API client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateScript asks Gemini for a two-speaker podcast script about the given
// category, written in the given language.
func (c *Client) GenerateScript(ctx context.Context, categoryName string, language domain.Language) (*domain.Script, error) {
	if c.apiKey == "" {
		return nil, errors.New("gemini: api key required")
	}

	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: buildScriptPrompt(categoryName, language)}}}},
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("gemini: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion generateContentResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(completion.Candidates) == 0 || len(completion.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini: response contained no candidates")
	}

	return parseScript(completion.Candidates[0].Content.Parts[0].Text)
}

// parseScript extracts the script JSON from the model output. The model is
// asked for bare JSON but routinely wraps it in markdown code fences, so the
// parser tolerates surrounding text.
func parseScript(raw string) (*domain.Script, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, errors.New("gemini: no JSON object in model output")
	}

	var script domain.Script
	if err := json.Unmarshal([]byte(raw[start:end+1]), &script); err != nil {
		return nil, fmt.Errorf("gemini: decode script: %w", err)
	}
	if script.Title == "" {
		return nil, errors.New("gemini: script missing title")
	}
	if script.Content == "" {
		return nil, errors.New("gemini: script missing content")
	}
	if script.Duration == 0 {
		script.Duration = 60
	}
	if script.Speaker1VoiceID == "" {
		script.Speaker1VoiceID = "voice_1"
	}
	if script.Speaker2VoiceID == "" {
		script.Speaker2VoiceID = "voice_2"
	}
	return &script, nil
}
