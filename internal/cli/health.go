package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server liveness",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	h, err := api.Health(cmd.Context())
	if err != nil {
		fmt.Println(errorStyle.Render("✗ server unreachable"))
		return err
	}

	fmt.Println(successStyle.Render("✓ " + h.Status))
	fmt.Println(hintStyle.Render(h.Message))
	return nil
}
