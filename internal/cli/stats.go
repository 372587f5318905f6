package cli

import (
	"fmt"
	"time"

	"github.com/raphaelgruber/voicebridge/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server runtime statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	snap, err := api.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}

	uptime := time.Duration(snap.UptimeSeconds * float64(time.Second)).Round(time.Second)
	fmt.Printf("%s %s\n", labelStyle.Render("uptime:"), uptime)
	fmt.Printf("%s %d\n", labelStyle.Render("live sessions:"), snap.LiveSessions)

	printOp("LLM replies", snap.LLMReply)
	printOp("outbound calls", snap.CreateCall)
	printOp("webhooks", snap.Webhook)
	return nil
}

func printOp(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		fmt.Printf("%s %s\n", labelStyle.Render(name+":"), hintStyle.Render("none yet"))
		return
	}
	fmt.Printf("%s %d (%d errors), avg %.0fms, min %dms, max %dms\n",
		labelStyle.Render(name+":"), op.Count, op.Errors, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
