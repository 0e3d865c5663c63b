package checkpoint

// Action tells the engine what to do with a step when resuming.
type Action string

const (
	// ActionSkipWithCache reuses the stored artifact without recomputation.
	ActionSkipWithCache Action = "skip_with_cache"
	// ActionExecute runs the step normally.
	ActionExecute Action = "execute"
)

// PlannedStep pairs a step with its resume action.
type PlannedStep struct {
	StepID string
	Action Action
}

// Recovery decides, at run start, which steps can reuse cached output and
// where execution must resume.
type Recovery struct {
	store *Store
}

func NewRecovery(store *Store) *Recovery {
	return &Recovery{store: store}
}

// Plan walks the canonical pipeline order and assigns an action per step.
// Only steps whose cached result is actually usable are skipped; a failed
// record never short-circuits a resume, it is re-executed.
func (r *Recovery) Plan(order []string) []PlannedStep {
	plan := make([]PlannedStep, 0, len(order))
	for _, stepID := range order {
		action := ActionExecute
		if r.store.ShouldSkip(stepID) && r.CanUseCached(stepID) {
			action = ActionSkipWithCache
		}
		plan = append(plan, PlannedStep{StepID: stepID, Action: action})
	}
	return plan
}

// CanUseCached reports whether stepID has a completed record with a
// non-empty artifact.
func (r *Recovery) CanUseCached(stepID string) bool {
	step := r.store.Get(stepID)
	return step != nil && step.Status == StatusCompleted && step.Data.Content != ""
}

// CachedResult returns the stored artifact for stepID when usable.
func (r *Recovery) CachedResult(stepID string) (StepData, bool) {
	if !r.CanUseCached(stepID) {
		return StepData{}, false
	}
	return r.store.Get(stepID).Data, true
}
