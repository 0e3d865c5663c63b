// Package runctx carries the identity of one workflow run: its run
// identifier, output directory, and checkpoint store handle. The value is
// passed explicitly into the engine and recovery code instead of living in
// globals, and it owns the run-scoped lock that keeps two processes from
// interleaving checkpoint writes under the same identifier.
package runctx

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/viktor-svirsky/ai-orchestrator/internal/checkpoint"
	"github.com/viktor-svirsky/ai-orchestrator/internal/sanitize"
)

// RunContext scopes one workflow run.
type RunContext struct {
	ID    string
	Dir   string            // artifact output directory; may be empty
	Store *checkpoint.Store // nil when checkpointing is disabled

	lockPath string
}

var nonAlphanumRe = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeSlug converts a string to a filesystem-friendly slug.
func sanitizeSlug(s string) string {
	s = strings.ToLower(s)
	s = nonAlphanumRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 40 {
		s = s[:40]
		s = strings.TrimRight(s, "-")
	}
	return s
}

// DeriveID resolves the run identifier: an explicit key wins, then the
// output directory (so re-invoking with the same directory resumes the
// same run), then a fresh random identifier.
func DeriveID(mode, outputDir, explicit string) string {
	if explicit != "" {
		return sanitizeSlug(explicit)
	}
	if outputDir != "" {
		if slug := sanitizeSlug(filepath.Base(filepath.Clean(outputDir))); slug != "" {
			return slug
		}
	}
	return mode + "-" + uuid.NewString()[:8]
}

// Options configure New.
type Options struct {
	Mode          string
	OutputDir     string
	ExplicitID    string
	CheckpointDir string
	Checkpoints   bool
}

// New builds the run context: validates and creates the output directory,
// derives the run identifier, takes the run lock, and opens the checkpoint
// store. A corrupt checkpoint document is surfaced via the returned
// warning; the run continues from scratch.
func New(opts Options) (rc *RunContext, warn error, err error) {
	rc = &RunContext{ID: DeriveID(opts.Mode, opts.OutputDir, opts.ExplicitID)}

	if opts.OutputDir != "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("resolving working directory: %w", err)
		}
		dir, err := sanitize.ValidateOutputPath(opts.OutputDir, cwd)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating output dir: %w", err)
		}
		rc.Dir = dir
	}

	if !opts.Checkpoints {
		return rc, nil, nil
	}

	ckDir := opts.CheckpointDir
	if ckDir == "" {
		ckDir = "checkpoints"
	}
	if err := os.MkdirAll(ckDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating checkpoint dir: %w", err)
	}

	if err := rc.acquireLock(ckDir); err != nil {
		return nil, nil, err
	}

	store, loadErr := checkpoint.NewStore(ckDir, rc.ID)
	if loadErr != nil {
		// Corrupt state: keep the empty store, report upward, run fresh.
		warn = loadErr
	}
	rc.Store = store
	return rc, warn, nil
}

// acquireLock takes the run-scoped lock file. A lock left behind by a dead
// process is broken and re-acquired.
func (rc *RunContext) acquireLock(dir string) error {
	path := filepath.Join(dir, rc.ID+".lock")
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			rc.lockPath = path
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("acquiring run lock: %w", err)
		}
		if !lockHolderAlive(path) {
			os.Remove(path)
			continue
		}
		return fmt.Errorf("run %q is locked by another process (%s)", rc.ID, path)
	}
	return fmt.Errorf("run %q is locked (%s)", rc.ID, path)
}

// lockHolderAlive reports whether the pid recorded in the lock file still
// refers to a running process. Unreadable lock content counts as alive so
// we never break a lock we cannot interpret.
func lockHolderAlive(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return true
	}
	return pidAlive(pid)
}

// Release drops the run lock. Safe to call when no lock is held.
func (rc *RunContext) Release() {
	if rc.lockPath != "" {
		os.Remove(rc.lockPath)
		rc.lockPath = ""
	}
}

// WriteArtifact writes a named artifact file into the run directory.
// A run without an output directory skips artifact files silently.
func (rc *RunContext) WriteArtifact(name, content string) error {
	if rc.Dir == "" {
		return nil
	}
	return os.WriteFile(filepath.Join(rc.Dir, name), []byte(content), 0644)
}
