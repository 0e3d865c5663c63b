package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/viktor-svirsky/ai-orchestrator/internal/history"
	"github.com/viktor-svirsky/ai-orchestrator/internal/runctx"
)

var smartCmd = &cobra.Command{
	Use:   "smart <prompt>",
	Short: "Draft locally with ollama, then verify with claude",
	Long: `The local model answers first, then claude reviews the draft and
produces a corrected final version. Cheap first pass, strong second pass.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSmart,
}

func init() {
	rootCmd.AddCommand(smartCmd)
}

func runSmart(cmd *cobra.Command, args []string) error {
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
	res, smartErr := app.orch.Smart(ctx, app.prompts, prompt)

	app.recordHistory(history.Record{
		RunID:      runctx.DeriveID("smart", "", ""),
		Mode:       "smart",
		PromptHash: history.HashPrompt(prompt),
		Status:     runStatus(smartErr),
		Duration:   time.Since(started),
		StartedAt:  started,
	})
	if smartErr != nil {
		// The draft may still be usable even when verification failed.
		if res != nil && res.Draft != nil {
			fmt.Printf("=== DRAFT (unverified, %.1fs) ===\n%s\n", res.Draft.Duration.Seconds(), res.Draft.Content)
		}
		return smartErr
	}

	fmt.Printf("=== DRAFT (ollama, %.1fs) ===\n%s\n", res.Draft.Duration.Seconds(), res.Draft.Content)
	fmt.Printf("\n=== VERIFIED (claude, %.1fs) ===\n%s\n", res.Verification.Duration.Seconds(), res.Verification.Content)
	return nil
}
