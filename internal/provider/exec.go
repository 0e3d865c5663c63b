package provider

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
	"github.com/viktor-svirsky/ai-orchestrator/internal/sanitize"
)

// cliProvider is the shared subprocess harness for CLI-backed providers.
type cliProvider struct {
	name    string
	command string
	entry   config.ProviderEntry
	limits  config.LimitsConfig
}

func (p *cliProvider) Name() string { return p.name }

// IsAvailable probes PATH for the backend binary.
func (p *cliProvider) IsAvailable() bool {
	_, err := exec.LookPath(p.command)
	return err == nil
}

// run executes the backend binary with the given args, bounded by the
// configured timeout. A deadline hit kills the process and surfaces as a
// timeout error, never a hang. Caller cancellation is propagated as-is.
func (p *cliProvider) run(ctx context.Context, args ...string) (*Response, error) {
	if !p.IsAvailable() {
		return nil, &Error{
			Provider: p.name,
			Kind:     KindUnavailable,
			Message:  "binary " + p.command + " not found",
		}
	}

	start := time.Now()
	execCtx, cancel := context.WithTimeout(ctx, p.entry.TimeoutDuration())
	defer cancel()

	cmd := exec.CommandContext(execCtx, p.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Backend CLIs fork (node wrappers, ollama spawning workers). Killing
	// only the direct child leaves orphans holding the output pipes, and
	// Wait would block on them past the deadline. Kill the whole process
	// group and stop waiting on the pipes shortly after.
	cmd.WaitDelay = 2 * time.Second
	setProcessGroup(cmd)

	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		// User cancellation is not a provider failure.
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		if execCtx.Err() == context.DeadlineExceeded {
			return nil, &Error{
				Provider: p.name,
				Kind:     KindTimeout,
				Message:  "timeout exceeded after " + duration.Truncate(time.Second).String(),
			}
		}
		msg := strings.TrimSpace(sanitize.SafeDecode(stderr.Bytes()))
		if msg == "" {
			msg = err.Error()
		}
		return nil, &Error{Provider: p.name, Kind: KindExit, Message: msg}
	}

	content := strings.TrimSpace(sanitize.SafeDecode(stdout.Bytes()))
	if content == "" {
		msg := strings.TrimSpace(sanitize.SafeDecode(stderr.Bytes()))
		if msg == "" {
			msg = "empty response received from provider (possible quota limit or error)"
		}
		return nil, &Error{Provider: p.name, Kind: KindEmptyOutput, Message: msg}
	}

	return &Response{
		Provider: p.name,
		Content:  sanitize.CleanResponse(content, p.limits.MaxResponseChars),
		Duration: duration,
	}, nil
}

// validate checks the prompt against the configured limits.
func (p *cliProvider) validate(prompt string) (string, error) {
	validated, err := sanitize.ValidatePrompt(prompt, 1, p.limits.MaxPromptChars)
	if err != nil {
		return "", &Error{Provider: p.name, Kind: KindBadPrompt, Message: err.Error()}
	}
	return validated, nil
}
