// Package orchestrator holds the provider registry and the fan-out
// execution strategy: every selected provider is asked concurrently, each
// bounded by its own timeout, and every outcome is collected. The
// sequential pipeline strategy lives in the workflow package; the two are
// deliberately separate code paths over the same provider capability.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/viktor-svirsky/ai-orchestrator/internal/assets"
	vlog "github.com/viktor-svirsky/ai-orchestrator/internal/log"
	"github.com/viktor-svirsky/ai-orchestrator/internal/provider"
)

// Outcome is the result of one provider call in a fan-out.
type Outcome struct {
	Response *provider.Response
	Err      error
}

// Orchestrator is a named registry of providers.
type Orchestrator struct {
	providers map[string]provider.Provider
	order     []string
}

// New registers providers, preserving order. A second provider with an
// already-registered name gets the "-fallback" suffix, further duplicates
// a numeric one.
func New(providers []provider.Provider) *Orchestrator {
	o := &Orchestrator{providers: make(map[string]provider.Provider)}
	counts := make(map[string]int)
	for _, p := range providers {
		name := p.Name()
		counts[name]++
		switch counts[name] {
		case 1:
		case 2:
			name = name + "-fallback"
		default:
			name = fmt.Sprintf("%s-%d", name, counts[name])
		}
		o.providers[name] = p
		o.order = append(o.order, name)
	}
	return o
}

// Get returns the provider registered under name.
func (o *Orchestrator) Get(name string) (provider.Provider, bool) {
	p, ok := o.providers[name]
	return p, ok
}

// Names returns registered names in registration order.
func (o *Orchestrator) Names() []string {
	return append([]string(nil), o.order...)
}

// Available reports whether the named provider exists and its backend is
// reachable. Shaped to serve as the resolver's availability probe.
func (o *Orchestrator) Available(name string) bool {
	p, ok := o.providers[name]
	return ok && p.IsAvailable()
}

// AvailableNames returns the registered names whose backends are reachable.
func (o *Orchestrator) AvailableNames() []string {
	var out []string
	for _, name := range o.order {
		if o.Available(name) {
			out = append(out, name)
		}
	}
	return out
}

// RunParallel asks every named provider concurrently and waits for all
// outcomes. A slow or failing provider never blocks collection of the
// others, and no sibling is cancelled on failure.
func (o *Orchestrator) RunParallel(ctx context.Context, prompt string, names []string) map[string]Outcome {
	results := make(map[string]Outcome, len(names))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		p, ok := o.providers[name]
		if !ok {
			vlog.Warn("provider not found, skipping", "provider", name)
			continue
		}
		wg.Add(1)
		go func(name string, p provider.Provider) {
			defer wg.Done()
			resp, err := p.Ask(ctx, prompt)
			mu.Lock()
			results[name] = Outcome{Response: resp, Err: err}
			mu.Unlock()
		}(name, p)
	}

	wg.Wait()
	return results
}

// PanelResult is the outcome of a panel run: all worker drafts plus the
// curator's synthesis.
type PanelResult struct {
	Workers map[string]Outcome
	Final   *provider.Response
}

// Panel fans the request out to every available provider except the
// curator, then has the curator synthesize a single answer from the
// drafts.
func (o *Orchestrator) Panel(ctx context.Context, prompts map[string]string, request, curatorName string) (*PanelResult, error) {
	curator, ok := o.providers[curatorName]
	if !ok {
		return nil, fmt.Errorf("curator %q not found", curatorName)
	}

	var workers []string
	for _, name := range o.order {
		if name != curatorName {
			workers = append(workers, name)
		}
	}
	if len(workers) == 0 {
		return nil, fmt.Errorf("no workers available for panel")
	}

	result := &PanelResult{Workers: o.RunParallel(ctx, request, workers)}

	var drafts string
	for _, name := range workers {
		out := result.Workers[name]
		if out.Err != nil || out.Response == nil {
			continue
		}
		drafts += fmt.Sprintf("--- DRAFT FROM %s ---\n%s\n\n", name, out.Response.Content)
	}
	if drafts == "" {
		return result, fmt.Errorf("no valid drafts received, aborting curation")
	}

	curationPrompt := assets.Render(prompts["curator"], map[string]string{
		"REQUEST": request,
		"DRAFTS":  drafts,
	})
	final, err := curator.Ask(ctx, curationPrompt)
	if err != nil {
		return result, fmt.Errorf("curator %s failed: %w", curatorName, err)
	}
	result.Final = final
	return result, nil
}

// SmartResult holds the local draft and the verification pass.
type SmartResult struct {
	Draft        *provider.Response
	Verification *provider.Response
}

// Smart asks ollama first, then has claude verify and correct the answer.
func (o *Orchestrator) Smart(ctx context.Context, prompts map[string]string, request string) (*SmartResult, error) {
	ollama, okO := o.providers["ollama"]
	claude, okC := o.providers["claude"]
	if !okO || !okC {
		return nil, fmt.Errorf("smart mode requires both ollama and claude")
	}

	draft, err := ollama.Ask(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("ollama failed, skipping verification: %w", err)
	}

	verifyPrompt := assets.Render(prompts["verifier"], map[string]string{
		"REQUEST": request,
		"ANSWER":  draft.Content,
	})
	verification, err := claude.Ask(ctx, verifyPrompt)
	if err != nil {
		return &SmartResult{Draft: draft}, fmt.Errorf("verification failed: %w", err)
	}
	return &SmartResult{Draft: draft, Verification: verification}, nil
}
