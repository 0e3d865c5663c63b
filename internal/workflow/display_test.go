package workflow

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestDisplay(verbose bool) (*Display, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &Display{w: buf, title: "test run", verbose: verbose}, buf
}

func TestTruncateColumn(t *testing.T) {
	short := "claude"
	if got := truncateColumn(short); got != short {
		t.Errorf("truncateColumn(%q) = %q", short, got)
	}
	long := strings.Repeat("x", providerColumnWidth+10)
	got := truncateColumn(long)
	if len([]rune(got)) != providerColumnWidth {
		t.Errorf("truncated length = %d, want %d", len([]rune(got)), providerColumnWidth)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
}

func TestStepDonePreviewTruncation(t *testing.T) {
	d, buf := newTestDisplay(true)
	lines := make([]string, maxPreviewLines+5)
	for i := range lines {
		lines[i] = "line"
	}
	d.StepDone("Coding", "gemini", time.Second, strings.Join(lines, "\n"))

	out := buf.String()
	if !strings.Contains(out, "Coding") || !strings.Contains(out, "gemini") {
		t.Errorf("missing step columns: %q", out)
	}
	if !strings.Contains(out, "(5 more lines)") {
		t.Errorf("missing truncation marker: %q", out)
	}
}

func TestStepFallbackAndFailed(t *testing.T) {
	d, buf := newTestDisplay(true)
	d.StepFallback("Testing", "provider gave up")
	d.StepFailed("Reviewing", "reviewer", errStub("boom"))

	out := buf.String()
	if !strings.Contains(out, "provider gave up") {
		t.Errorf("missing fallback reason: %q", out)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("missing failure message: %q", out)
	}
}

func TestSummaryCountsSteps(t *testing.T) {
	d, buf := newTestDisplay(true)
	d.Summary(5, 6, 90*time.Second)
	if !strings.Contains(buf.String(), "5/6 steps") {
		t.Errorf("summary output = %q", buf.String())
	}
}

type errStub string

func (e errStub) Error() string { return string(e) }
