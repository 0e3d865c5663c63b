package checkpoint

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pipelineOrder = []string{"planning", "coding", "testing", "reviewing", "refining", "documenting"}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "r1")
	require.NoError(t, err)
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	step, err := s.Create("planning", "Planning", StatusCompleted,
		StepData{Content: "1. do things", Provider: "claude"}, "", 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, step.Status)
	assert.Equal(t, 3.0, step.Duration)

	got := s.Get("planning")
	require.NotNil(t, got)
	assert.Equal(t, "1. do things", got.Data.Content)
	assert.Equal(t, "claude", got.Data.Provider)

	assert.Nil(t, s.Get("coding"))
}

func TestCreateOverwritesNotDuplicates(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("testing", "Testing", StatusFailed, StepData{}, "boom", time.Second)
	require.NoError(t, err)
	_, err = s.Create("testing", "Testing", StatusCompleted, StepData{Content: "tests"}, "", time.Second)
	require.NoError(t, err)

	assert.Len(t, s.steps, 1)
	assert.Equal(t, StatusCompleted, s.Get("testing").Status)
}

func TestCompletedNeverRegresses(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("coding", "Coding", StatusCompleted, StepData{Content: "code"}, "", time.Second)
	require.NoError(t, err)

	_, err = s.Create("coding", "Coding", StatusInProgress, StepData{}, "", 0)
	require.Error(t, err)
	assert.Equal(t, StatusCompleted, s.Get("coding").Status)
}

func TestCompletedWithoutArtifactMayRerun(t *testing.T) {
	s := newTestStore(t)

	// A completed record with no content cannot feed later steps, so the
	// step is allowed to execute again.
	_, err := s.Create("coding", "Coding", StatusCompleted, StepData{}, "", time.Second)
	require.NoError(t, err)

	_, err = s.Create("coding", "Coding", StatusInProgress, StepData{}, "", 0)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s.Get("coding").Status)
}

func TestPersistAndReload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "r1")
	require.NoError(t, err)

	_, err = s.Create("planning", "Planning", StatusCompleted, StepData{Content: "plan", Provider: "claude"}, "", 2*time.Second)
	require.NoError(t, err)
	_, err = s.Create("coding", "Coding", StatusCompleted, StepData{Content: "code", Provider: "gemini"}, "", 5*time.Second)
	require.NoError(t, err)

	reloaded, err := NewStore(dir, "r1")
	require.NoError(t, err)
	assert.True(t, reloaded.CanResume())
	assert.Equal(t, []string{"planning", "coding"}, reloaded.CompletedSteps())
	assert.Equal(t, "plan", reloaded.Get("planning").Data.Content)
	assert.Equal(t, "coding", reloaded.Last().StepID)
}

func TestLastSkipsFailedRecords(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("planning", "Planning", StatusCompleted, StepData{Content: "plan"}, "", time.Second)
	require.NoError(t, err)
	_, err = s.Create("coding", "Coding", StatusFailed, StepData{}, "boom", time.Second)
	require.NoError(t, err)

	require.NotNil(t, s.Last())
	assert.Equal(t, "planning", s.Last().StepID)
}

func TestRunsAreIsolatedByID(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(dir, "r1")
	require.NoError(t, err)
	_, err = s1.Create("planning", "Planning", StatusCompleted, StepData{Content: "x"}, "", 0)
	require.NoError(t, err)

	s2, err := NewStore(dir, "r2")
	require.NoError(t, err)
	assert.False(t, s2.CanResume())
}

func TestInProgressReconciledToFailedOnLoad(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "r1")
	require.NoError(t, err)
	_, err = s.Create("planning", "Planning", StatusCompleted, StepData{Content: "plan"}, "", 0)
	require.NoError(t, err)
	// Simulate a crash mid-step: testing left in_progress on disk.
	_, err = s.Create("testing", "Testing", StatusInProgress, StepData{}, "", 0)
	require.NoError(t, err)

	reloaded, err := NewStore(dir, "r1")
	require.NoError(t, err)

	testing_ := reloaded.Get("testing")
	require.NotNil(t, testing_)
	assert.Equal(t, StatusFailed, testing_.Status)
	assert.Contains(t, testing_.Error, "interrupted")

	// The crashed step is the resume point, not skipped.
	resume, ok := reloaded.ResumePoint(pipelineOrder)
	require.True(t, ok)
	assert.Equal(t, "coding", resume)
}

func TestResumePoint(t *testing.T) {
	s := newTestStore(t)
	resume, ok := s.ResumePoint(pipelineOrder)
	require.True(t, ok)
	assert.Equal(t, "planning", resume)

	for _, id := range pipelineOrder {
		_, err := s.Create(id, id, StatusCompleted, StepData{Content: "done"}, "", 0)
		require.NoError(t, err)
	}
	_, ok = s.ResumePoint(pipelineOrder)
	assert.False(t, ok, "all steps completed, nothing to resume")
}

func TestShouldSkip(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.ShouldSkip("planning"))

	_, err := s.Create("planning", "Planning", StatusFailed, StepData{}, "err", 0)
	require.NoError(t, err)
	assert.False(t, s.ShouldSkip("planning"), "failed step must be re-executed")

	_, err = s.Create("planning", "Planning", StatusCompleted, StepData{Content: "plan"}, "", 0)
	require.NoError(t, err)
	assert.True(t, s.ShouldSkip("planning"))
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("planning", "Planning", StatusCompleted, StepData{Content: "x"}, "", 0)
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	assert.False(t, s.CanResume())
	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))

	// Clearing twice is fine.
	require.NoError(t, s.Clear())
}

func TestCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint_r1.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := NewStore(dir, "r1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt))
	assert.False(t, s.CanResume(), "corrupt state must not be resumable")
}

func TestSaveIsAtomicNoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "r1")
	require.NoError(t, err)
	_, err = s.Create("planning", "Planning", StatusCompleted, StepData{Content: "x"}, "", 0)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "checkpoint_r1.json", entries[0].Name())
}

func TestDocumentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "r1")
	require.NoError(t, err)
	_, err = s.Create("planning", "Planning", StatusCompleted, StepData{Content: "plan", Provider: "claude"}, "", 1500*time.Millisecond)
	require.NoError(t, err)
	_, err = s.Create("testing", "Testing", StatusFailed, StepData{}, "all providers failed", 0)
	require.NoError(t, err)

	// The persisted layout is a single inspectable document.
	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "r1", doc["workflow_id"])
	assert.EqualValues(t, 2, doc["total_checkpoints"])

	// Reloading yields the identical in-memory state.
	reloaded, err := NewStore(dir, "r1")
	require.NoError(t, err)
	require.Len(t, reloaded.steps, 2)
	assert.Equal(t, s.Get("planning").Data, reloaded.Get("planning").Data)
	assert.Equal(t, s.Get("testing").Error, reloaded.Get("testing").Error)
	assert.Equal(t, 1.5, reloaded.Get("planning").Duration)
}

func TestSummarize(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("planning", "Planning", StatusCompleted, StepData{Content: "p"}, "", 0)
	require.NoError(t, err)
	_, err = s.Create("coding", "Coding", StatusFailed, StepData{}, "err", 0)
	require.NoError(t, err)

	sum := s.Summarize(pipelineOrder)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 1, sum.Failed)
	assert.True(t, sum.CanResume)
	assert.Equal(t, "coding", sum.ResumeFrom)
}

func TestExport(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("planning", "Planning", StatusCompleted, StepData{Content: "p"}, "", 0)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, s.Export(dest))
	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"workflow_id": "r1"`)
}
