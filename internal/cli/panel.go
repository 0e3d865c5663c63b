package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/viktor-svirsky/ai-orchestrator/internal/history"
	"github.com/viktor-svirsky/ai-orchestrator/internal/runctx"
)

var panelCurator string

var panelCmd = &cobra.Command{
	Use:   "panel <prompt>",
	Short: "Fan the prompt out to a provider panel, then curate one answer",
	Long: `Every provider except the curator answers the prompt independently.
The curator then synthesizes a single final answer from the drafts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPanel,
}

func init() {
	panelCmd.Flags().StringVar(&panelCurator, "curator", "claude", "provider that synthesizes the final answer")
	rootCmd.AddCommand(panelCmd)
}

func runPanel(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	prompt, err := app.validateRequest(joinPrompt(args))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), app.workflowTimeout())
	defer cancel()

	started := time.Now()
	res, panelErr := app.orch.Panel(ctx, app.prompts, prompt, panelCurator)

	if res != nil {
		for name, out := range res.Workers {
			if out.Err != nil {
				fmt.Printf("⚠ draft from %s failed: %v\n", name, out.Err)
				continue
			}
			fmt.Printf("✅ draft from %s (%.1fs)\n", name, out.Response.Duration.Seconds())
		}
	}

	app.recordHistory(history.Record{
		RunID:      runctx.DeriveID("panel", "", ""),
		Mode:       "panel",
		PromptHash: history.HashPrompt(prompt),
		Status:     runStatus(panelErr),
		Duration:   time.Since(started),
		StartedAt:  started,
	})
	if panelErr != nil {
		return panelErr
	}

	fmt.Printf("\n=== FINAL ANSWER (curated by %s) ===\n%s\n", panelCurator, res.Final.Content)
	return nil
}
