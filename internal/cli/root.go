package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viktor-svirsky/ai-orchestrator/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "aiorch",
	Short: "Multi-provider AI workflow orchestration CLI",
	Long: `aiorch coordinates multiple AI CLI backends (claude, gemini, ollama)
through one-shot fan-out modes and a checkpointed sequential development
pipeline: plan, code, test, review, refine, document.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aiorch %s\n", version.Version)
	},
}
