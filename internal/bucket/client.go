// Package bucket uploads generated audio to a Supabase Storage bucket and
// returns the public URL the mobile clients stream from.
package bucket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = time.Minute

// Client talks to the Supabase Storage object API.
type Client struct {
	baseURL    string
	serviceKey string
	bucketName string
	httpClient *http.Client
}

// Option customizes the storage client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a storage client for one bucket.
func NewClient(baseURL, serviceKey, bucketName string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		serviceKey: strings.TrimSpace(serviceKey),
		bucketName: bucketName,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload stores data at the given object path, replacing any existing object,
// and returns the public URL for it.
func (c *Client) Upload(ctx context.Context, data []byte, path string, contentType string) (string, error) {
	if c.baseURL == "" {
		return "", errors.New("bucket: base url required")
	}
	if c.serviceKey == "" {
		return "", errors.New("bucket: service key required")
	}
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return "", errors.New("bucket: object path required")
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucketName, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("bucket: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	// Replaces the object when a retried job uploads to the same path.
	req.Header.Set("X-Upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bucket: upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("bucket: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return c.PublicURL(path), nil
}

// PublicURL returns the unauthenticated download URL for an object path.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucketName, strings.TrimLeft(path, "/"))
}
