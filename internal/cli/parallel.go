package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/viktor-svirsky/ai-orchestrator/internal/history"
	"github.com/viktor-svirsky/ai-orchestrator/internal/runctx"
)

var parallelProviders []string

var parallelCmd = &cobra.Command{
	Use:   "parallel <prompt>",
	Short: "Ask every provider the same prompt concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParallel,
}

func init() {
	parallelCmd.Flags().StringSliceVar(&parallelProviders, "providers", nil,
		"providers to ask (default: all available)")
	rootCmd.AddCommand(parallelCmd)
}

func runParallel(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	prompt, err := app.validateRequest(joinPrompt(args))
	if err != nil {
		return err
	}

	names := parallelProviders
	if len(names) == 0 {
		names = app.orch.AvailableNames()
	}
	if len(names) == 0 {
		return fmt.Errorf("no providers available")
	}
	for _, name := range names {
		if _, ok := app.orch.Get(name); !ok {
			return fmt.Errorf("unknown provider %q (registered: %s)",
				name, strings.Join(app.orch.Names(), ", "))
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), app.workflowTimeout())
	defer cancel()

	started := time.Now()
	results := app.orch.RunParallel(ctx, prompt, names)

	ordered := make([]string, 0, len(results))
	for name := range results {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	failures := 0
	for _, name := range ordered {
		out := results[name]
		fmt.Printf("\n=== %s ===\n", name)
		if out.Err != nil {
			failures++
			fmt.Printf("error: %v\n", out.Err)
			continue
		}
		fmt.Printf("(%.1fs)\n%s\n", out.Response.Duration.Seconds(), out.Response.Content)
	}

	status := "completed"
	if failures == len(ordered) {
		status = "failed"
	}
	app.recordHistory(history.Record{
		RunID:      runctx.DeriveID("parallel", "", ""),
		Mode:       "parallel",
		PromptHash: history.HashPrompt(prompt),
		Status:     status,
		Duration:   time.Since(started),
		StartedAt:  started,
	})

	if failures == len(ordered) {
		return fmt.Errorf("all %d providers failed", failures)
	}
	return nil
}
