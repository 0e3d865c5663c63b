package provider

import (
	"context"
	"strings"

	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
)

// Gemini delegates to the gemini CLI in auto-approve mode.
type Gemini struct {
	cliProvider
}

func NewGemini(entry config.ProviderEntry, limits config.LimitsConfig) *Gemini {
	command := entry.Command
	if command == "" {
		command = "gemini"
	}
	return &Gemini{cliProvider{
		name:    "gemini",
		command: command,
		entry:   entry,
		limits:  limits,
	}}
}

func (p *Gemini) Ask(ctx context.Context, prompt string) (*Response, error) {
	prompt, err := p.validate(prompt)
	if err != nil {
		return nil, err
	}
	// gemini <prompt> --yolo
	resp, err := p.run(ctx, prompt, "--yolo")
	if err != nil {
		return nil, err
	}
	resp.Content = stripGeminiNoise(resp.Content)
	if resp.Content == "" {
		return nil, &Error{
			Provider: p.name,
			Kind:     KindEmptyOutput,
			Message:  "empty response received from provider (possible quota limit or error)",
		}
	}
	return resp, nil
}

// stripGeminiNoise drops the status lines the gemini CLI mixes into stdout.
func stripGeminiNoise(content string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "YOLO mode") || strings.Contains(line, "Loaded cached") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
