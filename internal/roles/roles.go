// Package roles maps abstract pipeline roles to ordered provider
// preference lists and performs fallback selection.
package roles

import (
	"fmt"

	"github.com/viktor-svirsky/ai-orchestrator/internal/config"
)

// Role is an abstract pipeline responsibility.
type Role string

const (
	Planner    Role = "planner"
	Coder      Role = "coder"
	Tester     Role = "tester"
	Reviewer   Role = "reviewer"
	Documenter Role = "documenter"
)

// All lists every role.
var All = []Role{Planner, Coder, Tester, Reviewer, Documenter}

// Critical reports whether a failure of this role aborts the run.
// Tester and Documenter failures are tolerated with a placeholder artifact.
func (r Role) Critical() bool {
	switch r {
	case Planner, Coder, Reviewer:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// AvailabilityProbe reports whether a named provider is currently usable.
type AvailabilityProbe func(name string) bool

// Resolver selects providers for roles from static configured priority
// lists. Configured order is authoritative; there is no scoring.
type Resolver struct {
	cfg       *config.Config
	available AvailabilityProbe
}

func NewResolver(cfg *config.Config, available AvailabilityProbe) *Resolver {
	return &Resolver{cfg: cfg, available: available}
}

// Resolve returns the configured preference list for role, filtered to
// providers currently available.
func (r *Resolver) Resolve(role Role) []string {
	var out []string
	for _, name := range r.cfg.Priorities(string(role)) {
		if r.available == nil || r.available(name) {
			out = append(out, name)
		}
	}
	return out
}

// SelectProvider returns the first resolved provider for role not present
// in excluded. ok is false when the preference list is exhausted.
func (r *Resolver) SelectProvider(role Role, excluded map[string]bool) (name string, ok bool) {
	for _, candidate := range r.Resolve(role) {
		if !excluded[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// Verify confirms every role has at least one available provider.
func (r *Resolver) Verify() error {
	for _, role := range All {
		if len(r.Resolve(role)) == 0 {
			return fmt.Errorf("no available providers for role %q", role)
		}
	}
	return nil
}
