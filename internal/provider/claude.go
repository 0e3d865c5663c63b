package provider

import (
	"context"

	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
)

// Claude delegates to the claude CLI in print mode.
type Claude struct {
	cliProvider
}

func NewClaude(entry config.ProviderEntry, limits config.LimitsConfig) *Claude {
	command := entry.Command
	if command == "" {
		command = "claude"
	}
	return &Claude{cliProvider{
		name:    "claude",
		command: command,
		entry:   entry,
		limits:  limits,
	}}
}

func (p *Claude) Ask(ctx context.Context, prompt string) (*Response, error) {
	prompt, err := p.validate(prompt)
	if err != nil {
		return nil, err
	}
	// claude -p <prompt>
	return p.run(ctx, "-p", prompt)
}
