package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <phone-number>",
	Short: "Originate an outbound AI-assisted call",
	Long: `Originate an outbound call through the voicebridge server.

The number must be in E.164 format, for example +15551234567.

Examples:
  voicebridge call +15551234567
  voicebridge call +4366412345678 --server http://voicebridge.internal:8000`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	result, err := api.MakeCall(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("make call: %w", err)
	}

	if result.Status != "success" {
		fmt.Println(errorStyle.Render("✗ call failed"))
		fmt.Println(hintStyle.Render(result.Error))
		return fmt.Errorf("call failed: %s", result.Error)
	}

	fmt.Println(successStyle.Render("✓ call initiated"))
	fmt.Printf("%s %s\n", labelStyle.Render("call SID:"), result.CallSID)
	return nil
}
