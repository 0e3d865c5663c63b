package provider

import (
	"context"

	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
)

// Ollama delegates to the ollama CLI with a configurable model. Two
// instances are registered in practice: the primary cloud model and a
// small local fallback model.
type Ollama struct {
	cliProvider
	model string
}

func NewOllama(entry config.ProviderEntry, limits config.LimitsConfig) *Ollama {
	command := entry.Command
	if command == "" {
		command = "ollama"
	}
	model := entry.Model
	if model == "" {
		model = "qwen3-coder:480b-cloud"
	}
	return &Ollama{
		cliProvider: cliProvider{
			name:    "ollama",
			command: command,
			entry:   entry,
			limits:  limits,
		},
		model: model,
	}
}

// Model returns the model this instance runs.
func (p *Ollama) Model() string { return p.model }

func (p *Ollama) Ask(ctx context.Context, prompt string) (*Response, error) {
	prompt, err := p.validate(prompt)
	if err != nil {
		return nil, err
	}
	// ollama run <model> <prompt>
	return p.run(ctx, "run", p.model, prompt)
}
