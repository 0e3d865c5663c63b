package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viktor-svirsky/ai-orchestrator/internal/checkpoint"
	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
	vlog "github.com/viktor-svirsky/ai-orchestrator/internal/log"
	"github.com/viktor-svirsky/ai-orchestrator/internal/provider"
	"github.com/viktor-svirsky/ai-orchestrator/internal/roles"
	"github.com/viktor-svirsky/ai-orchestrator/internal/runctx"
)

// ProviderSource looks up providers by registered name. The orchestrator
// registry satisfies it.
type ProviderSource interface {
	Get(name string) (provider.Provider, bool)
}

// Engine drives the sequential pipeline: one step at a time, each step
// resolved to a provider with fallback rotation, each outcome
// checkpointed before the next step starts.
type Engine struct {
	Config    *config.Config
	Resolver  *roles.Resolver
	Providers ProviderSource
	Run       *runctx.RunContext
	Display   *Display
	Prompts   map[string]string

	// sleep is replaceable in tests so backoff does not slow them down.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine wires an engine over resolved configuration and a run context.
func NewEngine(cfg *config.Config, resolver *roles.Resolver, providers ProviderSource, run *runctx.RunContext, display *Display, prompts map[string]string) *Engine {
	return &Engine{
		Config:    cfg,
		Resolver:  resolver,
		Providers: providers,
		Run:       run,
		Display:   display,
		Prompts:   prompts,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Execute runs the pipeline to completion. The returned State holds
// every artifact produced, including placeholders for tolerated
// failures. A critical step failure or a checkpoint write failure aborts
// the run; the state produced so far is still returned.
func (e *Engine) Execute(ctx context.Context, request string) (*State, error) {
	st := &State{Request: request}
	steps := Steps()
	start := time.Now()
	completed := 0

	var rec *checkpoint.Recovery
	actions := make(map[string]checkpoint.Action, len(steps))
	if e.store() != nil {
		rec = checkpoint.NewRecovery(e.store())
		for _, p := range rec.Plan(Order) {
			actions[p.StepID] = p.Action
		}
	}

	e.Display.Header()

	for _, def := range steps {
		select {
		case <-ctx.Done():
			e.Display.Failed(ctx.Err())
			return st, ctx.Err()
		default:
		}

		if actions[def.ID] == checkpoint.ActionSkipWithCache {
			data, _ := rec.CachedResult(def.ID)
			def.Apply(st, data.Content)
			e.Display.StepCached(def.Name, data.Provider)
			completed++
			continue
		}

		// An approving review makes refining a no-op: the coded version
		// is already the final version.
		if def.ID == StepRefining && ReviewApproves(st.Review) {
			def.Apply(st, st.Code)
			if err := e.record(def, checkpoint.StatusCompleted, checkpoint.StepData{Content: st.Code, Provider: "skipped"}, "", 0); err != nil {
				e.Display.Failed(err)
				return st, err
			}
			e.writeArtifact(def.Artifact, st.Code)
			e.Display.StepSkipped(def.Name, "review approved, no refinement needed")
			completed++
			continue
		}

		if err := e.record(def, checkpoint.StatusInProgress, checkpoint.StepData{}, "", 0); err != nil {
			e.Display.Failed(err)
			return st, err
		}

		e.Display.StepStart(def.Name, string(def.Role))
		stepStart := time.Now()
		resp, providerName, stepErr := e.askWithFallback(ctx, def.Role, def.Prompt(e.Prompts, st))
		duration := time.Since(stepStart)

		if stepErr != nil {
			if recErr := e.record(def, checkpoint.StatusFailed, checkpoint.StepData{}, stepErr.Error(), duration); recErr != nil {
				e.Display.Failed(recErr)
				return st, recErr
			}
			if ctx.Err() != nil {
				e.Display.StepFailed(def.Name, string(def.Role), ctx.Err())
				e.Display.Failed(ctx.Err())
				return st, ctx.Err()
			}
			if def.Critical {
				e.Display.StepFailed(def.Name, string(def.Role), stepErr)
				err := fmt.Errorf("step %q failed: %w", def.ID, stepErr)
				e.Display.Failed(err)
				return st, err
			}
			// Tolerated failure: substitute the placeholder and move on.
			placeholder := def.Fallback(st)
			def.Apply(st, placeholder)
			e.writeArtifact(def.Artifact, placeholder)
			e.Display.StepFallback(def.Name, fmt.Sprintf("%v — continuing with fallback", stepErr))
			continue
		}

		def.Apply(st, resp.Content)
		if err := e.record(def, checkpoint.StatusCompleted, checkpoint.StepData{Content: resp.Content, Provider: providerName}, "", duration); err != nil {
			e.Display.Failed(err)
			return st, err
		}
		e.writeArtifact(def.Artifact, resp.Content)
		e.Display.StepDone(def.Name, providerName, duration, resp.Content)
		completed++
	}

	e.Display.Summary(completed, len(steps), time.Since(start))
	return st, nil
}

func (e *Engine) store() *checkpoint.Store {
	if e.Run == nil {
		return nil
	}
	return e.Run.Store
}

// record writes a checkpoint for the step. Checkpoint persistence
// failures are fatal to the run: continuing would make resume lie about
// what already happened.
func (e *Engine) record(def StepDef, status checkpoint.Status, data checkpoint.StepData, errMsg string, duration time.Duration) error {
	s := e.store()
	if s == nil {
		return nil
	}
	if _, err := s.Create(def.ID, def.Name, status, data, errMsg, duration); err != nil {
		return fmt.Errorf("checkpoint write for step %q: %w", def.ID, err)
	}
	return nil
}

func (e *Engine) writeArtifact(name, content string) {
	if e.Run == nil {
		return
	}
	if err := e.Run.WriteArtifact(name, content); err != nil {
		vlog.Warn("failed to write artifact", "file", name, "err", err)
	}
}

// askWithFallback walks the role's provider priority list. Each
// candidate gets a bounded retry budget; quota errors skip retries and
// rotate immediately. An empty answer with no error also rotates.
func (e *Engine) askWithFallback(ctx context.Context, role roles.Role, prompt string) (*provider.Response, string, error) {
	excluded := make(map[string]bool)

	for {
		name, ok := e.Resolver.SelectProvider(role, excluded)
		if !ok {
			return nil, "", fmt.Errorf("all providers exhausted for role %q", role)
		}
		excluded[name] = true

		p, found := e.Providers.Get(name)
		if !found {
			vlog.Warn("provider in priority list not registered", "role", role, "provider", name)
			continue
		}

		resp, err := e.retryWithBackoff(ctx, name, p, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			vlog.Warn("provider failed, rotating to next",
				"role", role, "provider", name, "err", err)
			continue
		}
		if strings.TrimSpace(resp.Content) == "" {
			vlog.Warn("provider returned empty response despite success, rotating",
				"role", role, "provider", name)
			continue
		}
		return resp, name, nil
	}
}

// retryWithBackoff retries a single provider with exponential backoff
// (base × 2^(attempt−1)). Non-retryable errors, quota errors included,
// return immediately so the caller can rotate.
func (e *Engine) retryWithBackoff(ctx context.Context, name string, p provider.Provider, prompt string) (*provider.Response, error) {
	resp, err := p.Ask(ctx, prompt)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	perr := provider.AsError(name, err)
	if !perr.Retryable() {
		return nil, perr
	}

	maxRetries := e.Config.Entry(name).Retries()
	base := e.Config.Retry.BaseDelayDuration()

	for attempt := 1; attempt <= maxRetries; attempt++ {
		delay := base * (1 << (attempt - 1))
		vlog.Warn("retrying provider",
			"provider", name, "attempt", attempt, "max", maxRetries, "delay", delay, "err", perr)
		if err := e.sleep(ctx, delay); err != nil {
			return nil, err
		}
		resp, err = p.Ask(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		perr = provider.AsError(name, err)
		if !perr.Retryable() {
			return nil, perr
		}
	}
	return nil, perr
}
