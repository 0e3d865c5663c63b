// Package checkpoint persists per-step workflow outcomes so an interrupted
// run can resume without recomputing finished steps. One run maps to one
// human-readable JSON document; every write replaces the whole document
// atomically so a crash can never leave a torn file behind.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Status of a single workflow step.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrCorrupt marks a run-state document that could not be read or parsed.
// Callers treat it as "no resumable state" and run from scratch.
var ErrCorrupt = errors.New("checkpoint state corrupt")

// StepData is the artifact a step produced.
type StepData struct {
	Content  string `json:"content"`
	Provider string `json:"provider,omitempty"`
}

// Step is one checkpoint record.
type Step struct {
	StepID    string    `json:"step_id"`
	StepName  string    `json:"step_name"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	Data      StepData  `json:"data"`
	Error     string    `json:"error,omitempty"`
	Duration  float64   `json:"duration"` // seconds
}

// document is the persisted run-state layout.
type document struct {
	RunID       string    `json:"workflow_id"`
	LastUpdated time.Time `json:"last_updated"`
	Total       int       `json:"total_checkpoints"`
	Checkpoints []*Step   `json:"checkpoints"`
}

// Store holds the run state for one run identifier. It is not safe for
// concurrent use; the engine is the single writer.
type Store struct {
	runID string
	path  string
	steps []*Step // run order preserved
}

// NewStore opens (or creates) the run state for runID under dir. Existing
// state is loaded and reconciled: a step still marked in_progress means the
// previous process died mid-step, so it is demoted to failed and will be
// re-executed. A corrupt document yields an empty store and an error
// wrapping ErrCorrupt; the caller decides whether to continue fresh.
func NewStore(dir, runID string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating checkpoint dir: %w", err)
	}
	s := &Store{
		runID: runID,
		path:  filepath.Join(dir, "checkpoint_"+runID+".json"),
	}
	if err := s.load(); err != nil {
		return s, err
	}
	return s, nil
}

// Path returns the location of the persisted run-state document.
func (s *Store) Path() string { return s.path }

// RunID returns the run identifier this store is scoped to.
func (s *Store) RunID() string { return s.runID }

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrCorrupt, s.path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrCorrupt, s.path, err)
	}
	s.steps = doc.Checkpoints
	s.reconcile()
	return nil
}

// reconcile demotes in_progress records to failed. A record can only be
// in_progress on disk if the writer crashed between starting a step and
// recording its outcome.
func (s *Store) reconcile() {
	for _, step := range s.steps {
		if step.Status == StatusInProgress {
			step.Status = StatusFailed
			step.Error = "interrupted: step was in progress when the run state was loaded"
		}
	}
}

// Create writes or overwrites the record for stepID and durably persists
// the full run state. A persist failure is fatal to the run: the engine
// must not continue past a step whose completion was never recorded.
// A completed step with an artifact never regresses to another status; a
// completed record without content is defective and may be re-executed.
func (s *Store) Create(stepID, stepName string, status Status, data StepData, errMsg string, duration time.Duration) (*Step, error) {
	existing := s.Get(stepID)
	if existing != nil && existing.Status == StatusCompleted && status != StatusCompleted &&
		strings.TrimSpace(existing.Data.Content) != "" {
		return nil, fmt.Errorf("step %q is already completed and cannot regress to %s", stepID, status)
	}

	step := &Step{
		StepID:    stepID,
		StepName:  stepName,
		Timestamp: time.Now(),
		Status:    status,
		Data:      data,
		Error:     errMsg,
		Duration:  duration.Seconds(),
	}

	if existing != nil {
		for i, old := range s.steps {
			if old.StepID == stepID {
				s.steps[i] = step
				break
			}
		}
	} else {
		s.steps = append(s.steps, step)
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return step, nil
}

// save atomically replaces the run-state document (write temp, rename).
func (s *Store) save() error {
	doc := document{
		RunID:       s.runID,
		LastUpdated: time.Now(),
		Total:       len(s.steps),
		Checkpoints: s.steps,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing run state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing run state: %w", err)
	}
	return nil
}

// Get returns the record for stepID, or nil.
func (s *Store) Get(stepID string) *Step {
	for _, step := range s.steps {
		if step.StepID == stepID {
			return step
		}
	}
	return nil
}

// Last returns the most recently completed step in run order, or nil.
func (s *Store) Last() *Step {
	for i := len(s.steps) - 1; i >= 0; i-- {
		if s.steps[i].Status == StatusCompleted {
			return s.steps[i]
		}
	}
	return nil
}

// CompletedSteps lists the IDs of completed steps in run order.
func (s *Store) CompletedSteps() []string {
	var out []string
	for _, step := range s.steps {
		if step.Status == StatusCompleted {
			out = append(out, step.StepID)
		}
	}
	return out
}

// ShouldSkip reports whether stepID already completed in a prior run.
func (s *Store) ShouldSkip(stepID string) bool {
	step := s.Get(stepID)
	return step != nil && step.Status == StatusCompleted
}

// CanResume reports whether usable run state exists. Reconciliation at
// load time guarantees no in_progress record survives to this point.
func (s *Store) CanResume() bool {
	return len(s.steps) > 0
}

// ResumePoint returns the first step in canonical order whose status is
// not completed. ok is false when every step already completed.
func (s *Store) ResumePoint(order []string) (string, bool) {
	for _, stepID := range order {
		if !s.ShouldSkip(stepID) {
			return stepID, true
		}
	}
	return "", false
}

// Clear deletes the run state, forcing the next run to start fresh.
func (s *Store) Clear() error {
	s.steps = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing run state: %w", err)
	}
	return nil
}

// Summary aggregates checkpoint status counts for display.
type Summary struct {
	RunID      string
	Total      int
	Completed  int
	Failed     int
	CanResume  bool
	ResumeFrom string
}

// Summarize builds a Summary against the canonical step order.
func (s *Store) Summarize(order []string) Summary {
	sum := Summary{RunID: s.runID, Total: len(s.steps), CanResume: s.CanResume()}
	for _, step := range s.steps {
		switch step.Status {
		case StatusCompleted:
			sum.Completed++
		case StatusFailed:
			sum.Failed++
		}
	}
	if resume, ok := s.ResumePoint(order); ok {
		sum.ResumeFrom = resume
	}
	return sum
}

// Export writes a copy of the run state to path.
func (s *Store) Export(path string) error {
	doc := document{
		RunID:       s.runID,
		LastUpdated: time.Now(),
		Total:       len(s.steps),
		Checkpoints: s.steps,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run state: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
