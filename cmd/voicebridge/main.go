// Package main provides the voicebridge operator CLI.
package main

import (
	"os"

	"github.com/raphaelgruber/voicebridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
