package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/viktor-svirsky/ai-orchestrator/internal/assets"
	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
	"github.com/viktor-svirsky/ai-orchestrator/internal/history"
	vlog "github.com/viktor-svirsky/ai-orchestrator/internal/log"
	"github.com/viktor-svirsky/ai-orchestrator/internal/orchestrator"
	"github.com/viktor-svirsky/ai-orchestrator/internal/provider"
	"github.com/viktor-svirsky/ai-orchestrator/internal/roles"
	"github.com/viktor-svirsky/ai-orchestrator/internal/sanitize"
)

// workflowTimeoutFactor scales the per-provider timeout up to a bound for
// a whole pipeline run: six steps plus retry and fallback headroom.
const workflowTimeoutFactor = 8

// app bundles the resolved runtime pieces every command needs.
type app struct {
	cfg      *config.Config
	orch     *orchestrator.Orchestrator
	resolver *roles.Resolver
	prompts  map[string]string
	logFile  *os.File
}

// newApp loads configuration, initializes logging, and builds the
// provider registry and role resolver.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logFile := openLogFile()
	vlog.Init(cfg.LogLevel, logFile)

	prompts, err := assets.AllPrompts()
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}

	orch := orchestrator.New(provider.FromConfig(cfg))
	resolver := roles.NewResolver(cfg, orch.Available)

	return &app{
		cfg:      cfg,
		orch:     orch,
		resolver: resolver,
		prompts:  prompts,
		logFile:  logFile,
	}, nil
}

func (a *app) Close() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// validateRequest applies the configured prompt limits at the CLI
// boundary, before any provider is invoked. It returns the trimmed
// prompt so downstream steps see the sanitized form.
func (a *app) validateRequest(prompt string) (string, error) {
	return sanitize.ValidatePrompt(prompt, a.cfg.Limits.MinPromptChars, a.cfg.Limits.MaxPromptChars)
}

// workflowTimeout bounds a whole pipeline run relative to the slowest
// configured provider.
func (a *app) workflowTimeout() time.Duration {
	longest := time.Duration(0)
	for _, name := range []string{"ollama", "claude", "gemini", "ollama-fallback"} {
		if d := a.cfg.Entry(name).TimeoutDuration(); d > longest {
			longest = d
		}
	}
	return longest * workflowTimeoutFactor
}

// recordHistory appends a finished run to the local history database.
// History is best-effort: a broken database never fails the run itself.
func (a *app) recordHistory(rec history.Record) {
	store, err := history.Open(historyPath())
	if err != nil {
		vlog.Warn("history unavailable", "err", err)
		return
	}
	defer store.Close()
	if err := store.Add(rec); err != nil {
		vlog.Warn("failed to record run history", "err", err)
	}
}

func historyPath() string {
	return filepath.Join(".aiorch", "history.db")
}

func openLogFile() *os.File {
	dir := ".aiorch"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "aiorch.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return f
}

// joinPrompt merges positional args into a single request string.
func joinPrompt(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// runStatus maps an execution error to a history status.
func runStatus(err error) string {
	if err != nil {
		return "failed"
	}
	return "completed"
}
