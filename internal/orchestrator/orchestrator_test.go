package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/viktor-svirsky/ai-orchestrator/internal/provider"
)

type fakeProvider struct {
	name      string
	available bool
	delay     time.Duration
	content   string
	err       error
	asked     []string
}

func (f *fakeProvider) Name() string      { return f.name }
func (f *fakeProvider) IsAvailable() bool { return f.available }

func (f *fakeProvider) Ask(ctx context.Context, prompt string) (*provider.Response, error) {
	f.asked = append(f.asked, prompt)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Provider: f.name, Content: f.content, Duration: f.delay}, nil
}

func testPrompts() map[string]string {
	return map[string]string{
		"curator":  "curate '{{REQUEST}}'\n{{DRAFTS}}",
		"verifier": "verify '{{REQUEST}}' answer: {{ANSWER}}",
	}
}

func TestNewSuffixesDuplicateNames(t *testing.T) {
	o := New([]provider.Provider{
		&fakeProvider{name: "ollama", available: true},
		&fakeProvider{name: "claude", available: true},
		&fakeProvider{name: "ollama", available: true},
		&fakeProvider{name: "ollama", available: true},
	})

	want := []string{"ollama", "claude", "ollama-fallback", "ollama-3"}
	got := o.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	for _, name := range want {
		if _, ok := o.Get(name); !ok {
			t.Errorf("Get(%q) not found", name)
		}
	}
}

func TestAvailable(t *testing.T) {
	o := New([]provider.Provider{
		&fakeProvider{name: "claude", available: true},
		&fakeProvider{name: "gemini", available: false},
	})
	if !o.Available("claude") {
		t.Error("claude should be available")
	}
	if o.Available("gemini") {
		t.Error("gemini should be unavailable")
	}
	if o.Available("missing") {
		t.Error("unknown provider should be unavailable")
	}
	names := o.AvailableNames()
	if len(names) != 1 || names[0] != "claude" {
		t.Errorf("AvailableNames() = %v", names)
	}
}

func TestRunParallelCollectsAllOutcomes(t *testing.T) {
	slow := &fakeProvider{name: "ollama", available: true, delay: 200 * time.Millisecond, err: context.DeadlineExceeded}
	fast1 := &fakeProvider{name: "claude", available: true, delay: 20 * time.Millisecond, content: "a1"}
	fast2 := &fakeProvider{name: "gemini", available: true, delay: 20 * time.Millisecond, content: "a2"}
	o := New([]provider.Provider{slow, fast1, fast2})

	start := time.Now()
	results := o.RunParallel(context.Background(), "the prompt here", []string{"ollama", "claude", "gemini"})
	elapsed := time.Since(start)

	if len(results) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(results))
	}
	if results["claude"].Err != nil || results["claude"].Response.Content != "a1" {
		t.Errorf("claude outcome = %+v", results["claude"])
	}
	if results["gemini"].Err != nil || results["gemini"].Response.Content != "a2" {
		t.Errorf("gemini outcome = %+v", results["gemini"])
	}
	if results["ollama"].Err == nil {
		t.Error("expected recorded failure for ollama")
	}

	// Wall time tracks the slowest call, not the sum of all three.
	if elapsed > 150*time.Millisecond+slow.delay {
		t.Errorf("fan-out was not concurrent: took %v", elapsed)
	}
}

func TestRunParallelSkipsUnknownNames(t *testing.T) {
	o := New([]provider.Provider{&fakeProvider{name: "claude", available: true, content: "x"}})
	results := o.RunParallel(context.Background(), "p", []string{"claude", "nope"})
	if len(results) != 1 {
		t.Errorf("expected 1 outcome, got %d", len(results))
	}
}

func TestPanel(t *testing.T) {
	w1 := &fakeProvider{name: "ollama", available: true, content: "draft one"}
	w2 := &fakeProvider{name: "gemini", available: true, err: &provider.Error{Provider: "gemini", Kind: provider.KindTimeout, Message: "slow"}}
	curator := &fakeProvider{name: "claude", available: true, content: "final answer"}
	o := New([]provider.Provider{w1, w2, curator})

	res, err := o.Panel(context.Background(), testPrompts(), "build a widget", "claude")
	if err != nil {
		t.Fatalf("Panel() error: %v", err)
	}
	if res.Final == nil || res.Final.Content != "final answer" {
		t.Errorf("final = %+v", res.Final)
	}
	if len(res.Workers) != 2 {
		t.Errorf("expected 2 worker outcomes, got %d", len(res.Workers))
	}
	// The curator saw the surviving draft and the request, not the failure.
	curationPrompt := curator.asked[0]
	if !strings.Contains(curationPrompt, "draft one") || !strings.Contains(curationPrompt, "build a widget") {
		t.Errorf("curation prompt = %q", curationPrompt)
	}
	if strings.Contains(curationPrompt, "DRAFT FROM gemini") {
		t.Errorf("failed worker leaked into curation prompt: %q", curationPrompt)
	}
}

func TestPanelNoDrafts(t *testing.T) {
	w := &fakeProvider{name: "gemini", available: true, err: &provider.Error{Kind: provider.KindExit, Message: "boom"}}
	curator := &fakeProvider{name: "claude", available: true, content: "x"}
	o := New([]provider.Provider{w, curator})

	if _, err := o.Panel(context.Background(), testPrompts(), "anything here", "claude"); err == nil {
		t.Error("expected error when every worker fails")
	}
	if len(curator.asked) != 0 {
		t.Error("curator must not run without drafts")
	}
}

func TestPanelUnknownCurator(t *testing.T) {
	o := New([]provider.Provider{&fakeProvider{name: "claude", available: true}})
	if _, err := o.Panel(context.Background(), testPrompts(), "anything here", "gpt"); err == nil {
		t.Error("expected error for unknown curator")
	}
}

func TestSmart(t *testing.T) {
	ollama := &fakeProvider{name: "ollama", available: true, content: "draft answer"}
	claude := &fakeProvider{name: "claude", available: true, content: "verified answer"}
	o := New([]provider.Provider{ollama, claude})

	res, err := o.Smart(context.Background(), testPrompts(), "what is a monad")
	if err != nil {
		t.Fatalf("Smart() error: %v", err)
	}
	if res.Draft.Content != "draft answer" || res.Verification.Content != "verified answer" {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(claude.asked[0], "draft answer") {
		t.Errorf("verification prompt missing draft: %q", claude.asked[0])
	}
}

func TestSmartRequiresBothProviders(t *testing.T) {
	o := New([]provider.Provider{&fakeProvider{name: "ollama", available: true}})
	if _, err := o.Smart(context.Background(), testPrompts(), "anything here"); err == nil {
		t.Error("expected error without claude")
	}
}
