// Package elevenlabs synthesizes podcast audio through the ElevenLabs
// text-to-speech REST API, one request per dialogue line.
package elevenlabs

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
	defaultBaseURL     = "https://api.elevenlabs.io"
	defaultModelID     = "eleven_v3"
	defaultHTTPTimeout = 3 * time.Minute
)

// VoiceMap assigns a voice ID to each speaker for each content language.
type VoiceMap map[domain.Language]map[int]string

// DefaultVoices returns the stock speaker-to-voice assignment.
func DefaultVoices() VoiceMap {
	return VoiceMap{
		domain.LanguageEN: {1: "voice_1_en", 2: "voice_2_en"},
		domain.LanguageTR: {1: "voice_1_tr", 2: "voice_2_tr"},
	}
}

// Client calls the ElevenLabs text-to-speech endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	modelID    string
	voices     VoiceMap
	httpClient *http.Client
}

// Option customizes the ElevenLabs client.
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

// WithModelID overrides the default synthesis model.
func WithModelID(modelID string) Option {
	return func(c *Client) {
		if modelID != "" {
			c.modelID = modelID
		}
	}
}

// WithVoices overrides the speaker-to-voice assignment.
func WithVoices(voices VoiceMap) Option {
	return func(c *Client) {
		if voices != nil {
			c.voices = voices
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

// NewClient constructs an ElevenLabs API client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		modelID:    defaultModelID,
		voices:     DefaultVoices(),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// SynthesizeAudio renders the full dialogue as a single MP3 stream. Each line
// is synthesized with its speaker's voice and the segments are concatenated in
// script order. MP3 frames are self-contained, so byte concatenation yields a
// playable stream.
func (c *Client) SynthesizeAudio(ctx context.Context, scriptContent string, language domain.Language) ([]byte, error) {
	if c.apiKey == "" {
		return nil, errors.New("elevenlabs: api key required")
	}

	segments := ParseSegments(scriptContent)
	if len(segments) == 0 {
		return nil, errors.New("elevenlabs: script contains no speaker lines")
	}

	var combined bytes.Buffer
	for i, segment := range segments {
		audio, err := c.synthesizeSegment(ctx, segment, language)
		if err != nil {
			return nil, fmt.Errorf("elevenlabs: segment %d: %w", i+1, err)
		}
		combined.Write(audio)
	}
	return combined.Bytes(), nil
}

func (c *Client) synthesizeSegment(ctx context.Context, segment Segment, language domain.Language) ([]byte, error) {
	voiceID, err := c.voiceID(segment.Speaker, language)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(synthesizeRequest{
		Text:          segment.Text,
		ModelID:       c.modelID,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) voiceID(speaker int, language domain.Language) (string, error) {
	voices, ok := c.voices[language]
	if !ok {
		return "", fmt.Errorf("no voices configured for language %q", language)
	}
	voiceID, ok := voices[speaker]
	if !ok {
		return "", fmt.Errorf("no voice configured for speaker %d in language %q", speaker, language)
	}
	return voiceID, nil
}
