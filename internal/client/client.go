// Package client provides an HTTP client for the voicebridge server's JSON
// API, used by the operator CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/voicebridge/internal/metrics"
)

// Client talks to a running voicebridge server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If baseURL is empty, uses the VOICEBRIDGE_SERVER_URL
// env var or defaults to localhost:8000.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("VOICEBRIDGE_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Health is the liveness payload.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// CallResult is the make-call response.
type CallResult struct {
	CallSID string `json:"call_sid"`
	Status  string `json:"status"`
	Error   string `json:"error"`
}

// MakeCall asks the server to originate a call to the given number.
func (c *Client) MakeCall(ctx context.Context, toPhoneNumber string) (*CallResult, error) {
	payload, err := json.Marshal(map[string]string{"to_phone_number": toPhoneNumber})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/make-call", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result CallResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats fetches the server's metrics snapshot.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.get(ctx, "/stats", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server error: %s - %s", resp.Status, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
