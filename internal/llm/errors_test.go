package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		auth bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("connection reset"), false},
		{"credit balance", errors.New("insufficient credit balance"), true},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"quota exceeded", errors.New("quota exceeded for model"), true},
		{"billing issue", errors.New("billing account inactive"), true},
		{"invalid api key", errors.New("invalid api key"), true},
		{"authentication failed", errors.New("authentication failed"), true},
		{"unauthorized", errors.New("unauthorized request"), true},
		{"401 status", errors.New("HTTP 401: not allowed"), true},
		{"403 status", errors.New("HTTP 403: forbidden"), true},
		{"wrapped error", fmt.Errorf("generate reply: %w", errors.New("credit balance too low")), true},
		{"404 not auth", errors.New("HTTP 404: not found"), false},
		{"timeout not auth", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(classify(tt.err), ErrAuth)
			if got != tt.auth {
				t.Errorf("classify(%v) auth = %v, want %v", tt.err, got, tt.auth)
			}
		})
	}
}

func TestClassifyPassesThroughNonAuth(t *testing.T) {
	err := errors.New("network timeout")
	if got := classify(err); got != err {
		t.Errorf("expected original error returned, got %v", got)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"auth", classify(errors.New("invalid api key")), "auth"},
		{"malformed", fmt.Errorf("%w: no choices", ErrMalformedResponse), "malformed_response"},
		{"network", errors.New("dial tcp: connection refused"), "network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
