package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viktor-svirsky/ai-orchestrator/internal/checkpoint"
	"github.com/viktor-svirsky/ai-orchestrator/internal/workflow"
)

var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints",
	Short: "Inspect and manage saved run checkpoints",
}

var checkpointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resumable runs",
	RunE:  runCheckpointsList,
}

var checkpointsClearCmd = &cobra.Command{
	Use:   "clear <run-id>",
	Short: "Delete the checkpoint state of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointsClear,
}

var checkpointsExportCmd = &cobra.Command{
	Use:   "export <run-id> <file>",
	Short: "Write a copy of a run's checkpoint state",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheckpointsExport,
}

func init() {
	checkpointsCmd.AddCommand(checkpointsListCmd)
	checkpointsCmd.AddCommand(checkpointsClearCmd)
	checkpointsCmd.AddCommand(checkpointsExportCmd)
	rootCmd.AddCommand(checkpointsCmd)
}

func checkpointDir() (string, error) {
	app, err := newApp()
	if err != nil {
		return "", err
	}
	defer app.Close()
	return app.cfg.Checkpoints.Dir, nil
}

func runCheckpointsList(cmd *cobra.Command, args []string) error {
	dir, err := checkpointDir()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No checkpoints found.")
			return nil
		}
		return fmt.Errorf("reading checkpoint dir: %w", err)
	}

	type row struct {
		id      string
		summary checkpoint.Summary
	}
	var rows []row
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "checkpoint_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, "checkpoint_"), ".json")
		store, err := checkpoint.NewStore(dir, id)
		if err != nil {
			fmt.Printf("⚠ %s: %v\n", id, err)
			continue
		}
		rows = append(rows, row{id: id, summary: store.Summarize(workflow.Order)})
	}

	if len(rows) == 0 {
		fmt.Println("No checkpoints found.")
		return nil
	}

	fmt.Printf("%-40s %-10s %-10s %s\n", "Run ID", "Completed", "Failed", "Next step")
	fmt.Println(strings.Repeat("─", 76))
	for _, r := range rows {
		next := "—"
		if r.summary.ResumeFrom != "" {
			next = r.summary.ResumeFrom
		}
		fmt.Printf("%-40s %-10d %-10d %s\n", r.id, r.summary.Completed, r.summary.Failed, next)
	}
	return nil
}

func runCheckpointsClear(cmd *cobra.Command, args []string) error {
	dir, err := checkpointDir()
	if err != nil {
		return err
	}

	store, err := checkpoint.NewStore(dir, args[0])
	if err != nil {
		if store == nil {
			return err
		}
		// Corrupt state is exactly what clear is for.
		fmt.Printf("⚠ %v\n", err)
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clearing run %q: %w", args[0], err)
	}
	fmt.Printf("Cleared checkpoints for run %q\n", args[0])
	return nil
}

func runCheckpointsExport(cmd *cobra.Command, args []string) error {
	dir, err := checkpointDir()
	if err != nil {
		return err
	}

	store, err := checkpoint.NewStore(dir, args[0])
	if err != nil {
		return err
	}
	if !store.CanResume() {
		return fmt.Errorf("no checkpoint state for run %q", args[0])
	}
	if err := store.Export(args[1]); err != nil {
		return fmt.Errorf("exporting run %q: %w", args[0], err)
	}
	fmt.Printf("Exported run %q to %s\n", args[0], args[1])
	return nil
}
