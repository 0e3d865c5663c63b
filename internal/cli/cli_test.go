package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
)

func TestJoinPrompt(t *testing.T) {
	if got := joinPrompt([]string{"build", "a", "parser"}); got != "build a parser" {
		t.Errorf("joinPrompt = %q", got)
	}
	if got := joinPrompt([]string{"  padded  "}); got != "padded" {
		t.Errorf("joinPrompt = %q", got)
	}
}

func TestRunStatus(t *testing.T) {
	if runStatus(nil) != "completed" {
		t.Error("nil error should map to completed")
	}
	if runStatus(errors.New("x")) != "failed" {
		t.Error("error should map to failed")
	}
}

func TestSummarizeTitle(t *testing.T) {
	short := "short prompt"
	if got := summarizeTitle(short); got != short {
		t.Errorf("summarizeTitle(%q) = %q", short, got)
	}
	long := strings.Repeat("y", 100)
	got := summarizeTitle(long)
	if len(got) > 62 {
		t.Errorf("title not truncated: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
}

func TestValidateRequest(t *testing.T) {
	a := &app{cfg: &config.Config{
		Limits: config.LimitsConfig{MinPromptChars: 10, MaxPromptChars: 40},
	}}

	got, err := a.validateRequest("  build a parser  ")
	if err != nil {
		t.Fatalf("validateRequest error: %v", err)
	}
	if got != "build a parser" {
		t.Errorf("prompt = %q, want trimmed form", got)
	}

	if _, err := a.validateRequest("short"); err == nil {
		t.Error("under-length prompt should be rejected")
	}
	if _, err := a.validateRequest(strings.Repeat("x", 50)); err == nil {
		t.Error("over-length prompt should be rejected")
	}
}

func TestWorkflowTimeoutScalesSlowestProvider(t *testing.T) {
	a := &app{cfg: &config.Config{
		Providers: config.ProvidersConfig{
			Ollama: config.ProviderEntry{Timeout: "1m"},
			Claude: config.ProviderEntry{Timeout: "5m"},
			Gemini: config.ProviderEntry{Timeout: "2m"},
			// ollama-fallback left blank: picks up the 15m default.
		},
	}}
	want := 8 * 900 * time.Second
	if got := a.workflowTimeout(); got != want {
		t.Errorf("workflowTimeout = %v, want %v", got, want)
	}

	a.cfg.Providers.OllamaFallback.Timeout = "30s"
	want = 8 * 5 * time.Minute
	if got := a.workflowTimeout(); got != want {
		t.Errorf("workflowTimeout = %v, want %v", got, want)
	}
}
