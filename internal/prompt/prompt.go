// Package prompt loads the system prompt that seeds every conversation.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed system_prompt.txt
var defaultPrompt string

// Load reads and trims the prompt file at path. An empty path falls back to
// the embedded default prompt. The result is immutable for the process
// lifetime; a missing or empty prompt is a startup failure, not something to
// paper over at call time.
func Load(path string) (string, error) {
	if path == "" {
		return strings.TrimSpace(defaultPrompt), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt file %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return text, nil
}
