// Package workflow implements the sequential development pipeline:
// planning, coding, testing, reviewing, refining, documenting. Each step
// is executed by a role-resolved provider, checkpointed, and feeds its
// artifact into the prompts of later steps.
package workflow

import (
	"regexp"

	"github.com/viktor-svirsky/ai-orchestrator/internal/assets"
	"github.com/viktor-svirsky/ai-orchestrator/internal/roles"
)

// Canonical step identifiers, in pipeline order.
const (
	StepPlanning    = "planning"
	StepCoding      = "coding"
	StepTesting     = "testing"
	StepReviewing   = "reviewing"
	StepRefining    = "refining"
	StepDocumenting = "documenting"
)

// Order is the canonical pipeline sequence.
var Order = []string{
	StepPlanning,
	StepCoding,
	StepTesting,
	StepReviewing,
	StepRefining,
	StepDocumenting,
}

// State accumulates the artifacts produced by completed steps. Later
// step prompts are built from it.
type State struct {
	Request   string
	Plan      string
	Code      string
	Tests     string
	Review    string
	FinalCode string
	Doc       string

	// TestsFailed marks that Tests holds a placeholder, not a real suite.
	TestsFailed bool
}

// testsPlaceholder stands in for the test suite when generation failed,
// so the reviewer still gets a well-formed prompt.
const testsPlaceholder = "Tests unavailable due to generation error."

// docPlaceholder is written when documentation generation failed.
const docPlaceholder = "(Missing due to error)"

// StepDef describes one pipeline step.
type StepDef struct {
	ID       string
	Name     string
	Role     roles.Role
	Critical bool
	Artifact string

	// Prompt builds the provider prompt from templates and prior state.
	Prompt func(prompts map[string]string, st *State) string
	// Apply folds the step's output back into the state.
	Apply func(st *State, content string)
	// Fallback returns the placeholder artifact used when a non-critical
	// step exhausts its providers. Nil for critical steps.
	Fallback func(st *State) string
}

// Steps returns the pipeline definition. Refining reuses the coder role
// but is non-critical: when it fails, the unrefined code stands as the
// final version.
func Steps() []StepDef {
	return []StepDef{
		{
			ID:       StepPlanning,
			Name:     "Planning",
			Role:     roles.Planner,
			Critical: true,
			Artifact: "1_plan.md",
			Prompt: func(p map[string]string, st *State) string {
				return assets.Render(p["planner"], map[string]string{"REQUEST": st.Request})
			},
			Apply: func(st *State, c string) { st.Plan = c },
		},
		{
			ID:       StepCoding,
			Name:     "Coding",
			Role:     roles.Coder,
			Critical: true,
			Artifact: "2_code.md",
			Prompt: func(p map[string]string, st *State) string {
				return assets.Render(p["coder"], map[string]string{"PLAN": st.Plan})
			},
			Apply: func(st *State, c string) { st.Code = c },
		},
		{
			ID:       StepTesting,
			Name:     "Testing",
			Role:     roles.Tester,
			Critical: false,
			Artifact: "3_tests.md",
			Prompt: func(p map[string]string, st *State) string {
				return assets.Render(p["tester"], map[string]string{"CODE": st.Code})
			},
			Apply: func(st *State, c string) { st.Tests = c },
			Fallback: func(st *State) string {
				st.TestsFailed = true
				return testsPlaceholder
			},
		},
		{
			ID:       StepReviewing,
			Name:     "Reviewing",
			Role:     roles.Reviewer,
			Critical: true,
			Artifact: "4_review.md",
			Prompt: func(p map[string]string, st *State) string {
				return assets.Render(p["reviewer"], map[string]string{
					"CODE":  st.Code,
					"TESTS": st.Tests,
				})
			},
			Apply: func(st *State, c string) { st.Review = c },
		},
		{
			ID:       StepRefining,
			Name:     "Refining",
			Role:     roles.Coder,
			Critical: false,
			Artifact: "5_final_code.md",
			Prompt: func(p map[string]string, st *State) string {
				return assets.Render(p["refiner"], map[string]string{
					"CODE":   st.Code,
					"REVIEW": st.Review,
				})
			},
			Apply: func(st *State, c string) { st.FinalCode = c },
			Fallback: func(st *State) string {
				return st.Code
			},
		},
		{
			ID:       StepDocumenting,
			Name:     "Documenting",
			Role:     roles.Documenter,
			Critical: false,
			Artifact: "6_README.md",
			Prompt: func(p map[string]string, st *State) string {
				return assets.Render(p["documenter"], map[string]string{
					"REQUEST": st.Request,
					"CODE":    st.FinalCode,
				})
			},
			Apply: func(st *State, c string) { st.Doc = c },
			Fallback: func(st *State) string {
				return docPlaceholder
			},
		},
	}
}

var lgtmRe = regexp.MustCompile(`(?i)\bLGTM\b`)

// reviewApprovalMaxLen bounds how long an approval can be: an LGTM buried
// in a long findings list does not count as approval.
const reviewApprovalMaxLen = 200

// ReviewApproves reports whether a review verdict approves the code
// as-is, which lets the pipeline skip the refining step.
func ReviewApproves(review string) bool {
	return len(review) < reviewApprovalMaxLen && lgtmRe.MatchString(review)
}
