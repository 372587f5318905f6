// Package cli provides the command-line interface for voicebridge.
package cli

import (
	"github.com/raphaelgruber/voicebridge/internal/client"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	serverURL string
	api       *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "voicebridge",
	Short: "Operator CLI for the voicebridge call server",
	Long: `voicebridge is the operator CLI for a running voicebridge server.

It originates outbound AI-assisted phone calls and inspects server health
and runtime statistics. The server address comes from --server or the
VOICEBRIDGE_SERVER_URL environment variable.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api = client.New(serverURL)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "voicebridge server URL (default http://localhost:8000)")

	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
}
