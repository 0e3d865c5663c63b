// Package provider wraps external AI answering backends behind a uniform,
// bounded ask capability. Each backend is a CLI tool invoked once per call;
// the call is cancelled and the process terminated when the configured
// timeout elapses. Retry and fallback policy live in the workflow engine,
// not here.
package provider

import (
	"context"
	"time"

	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
)

// Response is a successful provider answer.
type Response struct {
	Provider string
	Content  string
	Duration time.Duration
}

// Provider is the capability every AI backend exposes.
type Provider interface {
	Name() string
	IsAvailable() bool
	Ask(ctx context.Context, prompt string) (*Response, error)
}

// FromConfig builds the standard provider set in registration order:
// ollama, claude, gemini, plus the local ollama fallback instance.
func FromConfig(cfg *config.Config) []Provider {
	return []Provider{
		NewOllama(cfg.Providers.Ollama, cfg.Limits),
		NewClaude(cfg.Providers.Claude, cfg.Limits),
		NewGemini(cfg.Providers.Gemini, cfg.Limits),
		NewOllama(cfg.Providers.OllamaFallback, cfg.Limits),
	}
}
