// Package models defines the data structures shared across voicebridge.
package models

import "fmt"

// Role tags a transcript message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// Message is a single entry in a call transcript. Insertion order is
// significant: the ordered message list is the entire context sent to the
// inference service on every turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
