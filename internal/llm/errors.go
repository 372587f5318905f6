package llm

import (
	"errors"
	"strings"
)

// Sentinel errors for inference failures. Use errors.Is() to check.
// The voice handler collapses all of them into one spoken fallback, but the
// distinction is kept for logs.
var (
	// ErrAuth indicates the provider rejected our credentials or quota.
	ErrAuth = errors.New("inference auth/quota failure")

	// ErrMalformedResponse indicates the provider answered with something
	// we could not use (no choices, empty content).
	ErrMalformedResponse = errors.New("malformed inference response")
)

// authPatterns are substrings that identify credential, billing, or quota
// failures across providers.
var authPatterns = []string{
	"credit balance",
	"rate limit",
	"quota",
	"billing",
	"api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

// classify wraps provider errors with the matching sentinel so callers can
// tell auth problems from transient network ones. Unrecognized errors pass
// through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range authPatterns {
		if strings.Contains(msg, pattern) {
			return errors.Join(ErrAuth, err)
		}
	}
	return err
}

// Kind names the failure category for structured logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "network"
	}
}
