package main

import (
	"os"

	"github.com/viktor-svirsky/ai-orchestrator/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
