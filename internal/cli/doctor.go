package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provider binaries and configuration",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	allOK := true

	check := func(label string, ok bool, hint string) {
		if ok {
			fmt.Printf("✅ %s\n", label)
		} else {
			fmt.Printf("❌ %s — %s\n", label, hint)
			allOK = false
		}
	}

	// config first: binary names come from it
	cfg, cfgErr := config.Load()
	check("config loadable", cfgErr == nil, fmt.Sprintf("fix config: %v", cfgErr))
	if cfgErr != nil {
		return nil
	}
	validateErr := cfg.Validate()
	check("config valid", validateErr == nil, fmt.Sprintf("%v", validateErr))

	anyProvider := false
	for _, p := range []struct {
		name  string
		entry config.ProviderEntry
		hint  string
	}{
		{"ollama", cfg.Providers.Ollama, "install ollama: https://ollama.com"},
		{"claude", cfg.Providers.Claude, "install the claude CLI"},
		{"gemini", cfg.Providers.Gemini, "install the gemini CLI"},
	} {
		command := p.entry.Command
		if command == "" {
			command = p.name
		}
		_, err := exec.LookPath(command)
		check(fmt.Sprintf("%s CLI installed (%s)", p.name, command), err == nil, p.hint)
		if err == nil {
			anyProvider = true
		}
	}
	check("at least one provider usable", anyProvider, "install one of the providers above")

	// checkpoint dir writable
	ckDir := cfg.Checkpoints.Dir
	if ckDir == "" {
		ckDir = "checkpoints"
	}
	probe := filepath.Join(ckDir, ".doctor-probe")
	writeErr := os.MkdirAll(ckDir, 0755)
	if writeErr == nil {
		writeErr = os.WriteFile(probe, []byte("ok"), 0644)
		os.Remove(probe)
	}
	check(fmt.Sprintf("checkpoint dir writable (%s)", ckDir), writeErr == nil, fmt.Sprintf("%v", writeErr))

	fmt.Println()
	if allOK {
		fmt.Println("All checks passed. aiorch is ready.")
	} else {
		fmt.Println("Some checks failed. Fix the issues above before running aiorch.")
	}
	return nil
}
