package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viktor-svirsky/ai-orchestrator/internal/history"
)

var statsRecent int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run statistics from the local history",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 10, "number of recent runs to list")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(historyPath()); os.IsNotExist(err) {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	store, err := history.Open(historyPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	stats, err := store.Summarize()
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if stats.TotalRuns == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("Runs: %d total, %d completed, %d failed\n",
		stats.TotalRuns, stats.Completed, stats.Failed)
	fmt.Printf("Total time: %.0fs\n", stats.TotalDuration.Seconds())
	for mode, count := range stats.ByMode {
		fmt.Printf("  %-10s %d\n", mode, count)
	}

	recent, err := store.Recent(statsRecent)
	if err != nil {
		return fmt.Errorf("reading recent runs: %w", err)
	}

	fmt.Println()
	fmt.Printf("%-30s %-10s %-10s %-8s %s\n", "Run ID", "Mode", "Status", "Steps", "Duration")
	fmt.Println(strings.Repeat("─", 72))
	for _, r := range recent {
		steps := "—"
		if r.TotalSteps > 0 {
			steps = fmt.Sprintf("%d/%d", r.StepsCompleted, r.TotalSteps)
		}
		fmt.Printf("%-30s %-10s %-10s %-8s %.0fs\n",
			r.RunID, r.Mode, r.Status, steps, r.Duration.Seconds())
	}
	return nil
}
