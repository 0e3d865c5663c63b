package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/viktor-svirsky/ai-orchestrator/internal/history"
	vlog "github.com/viktor-svirsky/ai-orchestrator/internal/log"
	"github.com/viktor-svirsky/ai-orchestrator/internal/runctx"
	"github.com/viktor-svirsky/ai-orchestrator/internal/workflow"
)

var (
	workflowOutputDir     string
	workflowRunID         string
	workflowResume        bool
	workflowFresh         bool
	workflowNoCheckpoints bool
	workflowVerbose       bool
)

var workflowCmd = &cobra.Command{
	Use:   "workflow <prompt>",
	Short: "Run the sequential plan-code-test-review-refine-document pipeline",
	Long: `Runs the full development pipeline over the prompt. Each step is
checkpointed; re-running with the same --run-id (or --output-dir) resumes
from the first incomplete step.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWorkflow,
}

func init() {
	workflowCmd.Flags().StringVarP(&workflowOutputDir, "output-dir", "o", "", "directory for step artifacts (also names the run)")
	workflowCmd.Flags().StringVar(&workflowRunID, "run-id", "", "explicit run identifier for checkpointing")
	workflowCmd.Flags().BoolVar(&workflowResume, "resume", false, "require an existing checkpoint to resume from")
	workflowCmd.Flags().BoolVar(&workflowFresh, "fresh", false, "discard existing checkpoints and start over")
	workflowCmd.Flags().BoolVar(&workflowNoCheckpoints, "no-checkpoints", false, "disable checkpointing for this run")
	workflowCmd.Flags().BoolVarP(&workflowVerbose, "verbose", "v", false, "plain line-per-event output")
	rootCmd.AddCommand(workflowCmd)
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	prompt, err := app.validateRequest(joinPrompt(args))
	if err != nil {
		return err
	}
	if err := app.resolver.Verify(); err != nil {
		return err
	}

	rc, warn, err := runctx.New(runctx.Options{
		Mode:          "workflow",
		OutputDir:     workflowOutputDir,
		ExplicitID:    workflowRunID,
		CheckpointDir: app.cfg.Checkpoints.Dir,
		Checkpoints:   app.cfg.Checkpoints.IsEnabled() && !workflowNoCheckpoints,
	})
	if err != nil {
		return err
	}
	defer rc.Release()
	if warn != nil {
		vlog.Warn("checkpoint state unreadable, starting fresh", "run", rc.ID, "err", warn)
	}

	if workflowFresh && rc.Store != nil {
		if err := rc.Store.Clear(); err != nil {
			return fmt.Errorf("clearing checkpoints: %w", err)
		}
	}
	if workflowResume && (rc.Store == nil || !rc.Store.CanResume()) {
		return fmt.Errorf("nothing to resume for run %q", rc.ID)
	}
	if rc.Store != nil && rc.Store.CanResume() {
		if point, ok := rc.Store.ResumePoint(workflow.Order); ok {
			fmt.Printf("Resuming run %q from step %q (use --fresh to start over)\n", rc.ID, point)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), app.workflowTimeout())
	defer cancel()
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt)
	defer stopSignals()

	display := workflow.NewDisplay(summarizeTitle(prompt), workflowVerbose)
	engine := workflow.NewEngine(app.cfg, app.resolver, app.orch, rc, display, app.prompts)

	started := time.Now()
	st, execErr := engine.Execute(ctx, prompt)

	completed := 0
	if rc.Store != nil {
		completed = len(rc.Store.CompletedSteps())
	}
	app.recordHistory(history.Record{
		RunID:          rc.ID,
		Mode:           "workflow",
		PromptHash:     history.HashPrompt(prompt),
		Status:         runStatus(execErr),
		StepsCompleted: completed,
		TotalSteps:     len(workflow.Order),
		Duration:       time.Since(started),
		StartedAt:      started,
	})
	if execErr != nil {
		return execErr
	}

	printDeliverable(st, rc)
	return nil
}

// summarizeTitle trims the prompt into a short display header.
func summarizeTitle(prompt string) string {
	const max = 60
	if len(prompt) <= max {
		return prompt
	}
	return prompt[:max-1] + "…"
}

func printDeliverable(st *workflow.State, rc *runctx.RunContext) {
	if rc.Dir != "" {
		fmt.Printf("\nArtifacts written to %s\n", rc.Dir)
		return
	}
	fmt.Println("\n--- FINAL CODE ---")
	fmt.Println(st.FinalCode)
	if !st.TestsFailed && st.Tests != "" {
		fmt.Println("\n--- TESTS ---")
		fmt.Println(st.Tests)
	}
	fmt.Println("\n--- DOCUMENTATION ---")
	fmt.Println(st.Doc)
	fmt.Println("\n--- REVIEW NOTES ---")
	fmt.Println(st.Review)
}
