// Package twilio provides a minimal client for the Twilio voice REST API
// and rendering of the TwiML documents the webhook handlers return.
package twilio

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// CallCreator originates outbound calls. Satisfied by *Client; the HTTP
// boundary depends on this interface so tests can stub the provider.
type CallCreator interface {
	CreateCall(ctx context.Context, params CreateCallParams) (*Call, error)
}

// Client talks to the Twilio REST API using account-SID basic auth.
type Client struct {
	http       *resty.Client
	accountSID string
}

// Config configures the Twilio client.
type Config struct {
	AccountSID string
	AuthToken  string
	BaseURL    string // override for tests; defaults to the public API
}

var _ CallCreator = (*Client)(nil)

// NewClient creates a Twilio REST client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("twilio account SID is required")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio auth token is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twilio.com/2010-04-01"
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		http:       httpClient,
		accountSID: cfg.AccountSID,
	}, nil
}

// Call is the subset of the Twilio call resource we consume.
type Call struct {
	SID       string `json:"sid"`
	To        string `json:"to"`
	From      string `json:"from"`
	Status    string `json:"status"`
	Direction string `json:"direction"`
}

// CreateCallParams are the parameters for originating a call.
type CreateCallParams struct {
	To                      string
	From                    string
	URL                     string // webhook Twilio fetches for call TwiML
	Record                  bool
	RecordingStatusCallback string
}

// Error is a Twilio API error payload.
type Error struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("twilio error %d: %s", e.Code, e.Message)
}

// CreateCall originates an outbound call, directing call progress to the
// given webhook URL and recording lifecycle events to the recording
// callback. Provider-side failures come back as *Error.
func (c *Client) CreateCall(ctx context.Context, params CreateCallParams) (*Call, error) {
	form := map[string]string{
		"To":   params.To,
		"From": params.From,
		"Url":  params.URL,
	}
	if params.Record {
		form["Record"] = "true"
	}
	if params.RecordingStatusCallback != "" {
		form["RecordingStatusCallback"] = params.RecordingStatusCallback
		form["RecordingStatusCallbackMethod"] = "POST"
	}

	var call Call
	var apiErr Error

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&call).
		SetError(&apiErr).
		Post(fmt.Sprintf("/Accounts/%s/Calls.json", c.accountSID))
	if err != nil {
		return nil, fmt.Errorf("create call: %w", err)
	}

	if resp.IsError() {
		if apiErr.Message != "" {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("create call: %s: %s", resp.Status(), resp.String())
	}

	return &call, nil
}
