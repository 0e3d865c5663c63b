package workflow

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// Display handles terminal progress output for a pipeline run.
type Display struct {
	w       io.Writer
	title   string
	verbose bool
	stop    chan struct{}
	done    chan struct{}
}

// NewDisplay creates a display that writes to stdout.
func NewDisplay(title string, verbose bool) *Display {
	return &Display{w: os.Stdout, title: title, verbose: verbose}
}

// providerColumnWidth is the fixed display width of the provider column.
const providerColumnWidth = 22

func truncateColumn(s string) string {
	if utf8.RuneCountInString(s) <= providerColumnWidth {
		return s
	}
	runes := []rune(s)
	return string(runes[:providerColumnWidth-1]) + "…"
}

// Header prints the run header.
func (d *Display) Header() {
	fmt.Fprintf(d.w, "\n%s\n", headerStyle.Render("⚙️ aiorch — "+d.title))
	fmt.Fprintln(d.w, strings.Repeat("─", 72))
}

// StepStart prints a step-in-progress line and starts an elapsed time
// ticker that rewrites the line in place once per second. Verbose mode
// prints a plain line instead, so provider logs can follow it.
func (d *Display) StepStart(name, role string) {
	role = truncateColumn(role)
	if d.verbose {
		fmt.Fprintf(d.w, "⏳ %-12s %-22s running...\n", name, role)
		return
	}
	fmt.Fprintf(d.w, "⏳ %-12s %-22s running...", name, role)

	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop = stop
	d.done = done
	start := time.Now()

	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fmt.Fprintf(d.w, "\r⏳ %-12s %-22s running... %.0fs",
					name, role, time.Since(start).Seconds())
			}
		}
	}()
}

func (d *Display) stopTicker() {
	if d.stop != nil {
		close(d.stop)
		<-d.done
		d.stop = nil
		d.done = nil
	}
}

func (d *Display) linePrefix() string {
	if d.verbose {
		return ""
	}
	return "\r"
}

// maxPreviewLines is the number of artifact lines shown after a step.
const maxPreviewLines = 10

// StepDone prints a completed step line with an artifact preview.
func (d *Display) StepDone(name, provider string, duration time.Duration, artifact string) {
	d.stopTicker()
	fmt.Fprintf(d.w, "%s%s %-12s %-22s %.1fs\n",
		d.linePrefix(), okStyle.Render("✅"), name, truncateColumn(provider), duration.Seconds())

	if artifact == "" {
		return
	}
	lines := strings.Split(artifact, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	preview := lines
	truncated := false
	if len(lines) > maxPreviewLines {
		preview = lines[:maxPreviewLines]
		truncated = true
	}
	for _, l := range preview {
		fmt.Fprintln(d.w, dimStyle.Render("  │ "+l))
	}
	if truncated {
		fmt.Fprintln(d.w, dimStyle.Render(fmt.Sprintf("  │ ... (%d more lines)", len(lines)-maxPreviewLines)))
	}
}

// StepCached prints a line for a step restored from a checkpoint.
func (d *Display) StepCached(name, provider string) {
	fmt.Fprintf(d.w, "%s %-12s %-22s restored from checkpoint\n",
		okStyle.Render("↻"), name, truncateColumn(provider))
}

// StepSkipped prints a line for a step the pipeline decided not to run.
func (d *Display) StepSkipped(name, reason string) {
	fmt.Fprintf(d.w, "%s %-12s %s\n", dimStyle.Render("⏭"), name, dimStyle.Render(reason))
}

// StepFallback prints a warning for a non-critical step that failed and
// was replaced by a placeholder artifact.
func (d *Display) StepFallback(name, reason string) {
	d.stopTicker()
	fmt.Fprintf(d.w, "%s%s %-12s %s\n",
		d.linePrefix(), warnStyle.Render("⚠"), name, warnStyle.Render(reason))
}

// StepFailed prints a failed step line.
func (d *Display) StepFailed(name, role string, err error) {
	d.stopTicker()
	fmt.Fprintf(d.w, "%s%s %-12s %-22s %s\n",
		d.linePrefix(), failStyle.Render("❌"), name, truncateColumn(role), err.Error())
}

// Summary prints the final run summary.
func (d *Display) Summary(completed int, total int, duration time.Duration) {
	fmt.Fprintln(d.w, strings.Repeat("─", 72))
	fmt.Fprintf(d.w, "%s %d/%d steps  %.0fs\n\n",
		okStyle.Render("✅ Done"), completed, total, duration.Seconds())
}

// Failed prints a failure summary.
func (d *Display) Failed(err error) {
	d.stopTicker()
	fmt.Fprintln(d.w, strings.Repeat("─", 72))
	fmt.Fprintf(d.w, "%s %s\n\n", failStyle.Render("❌ Failed:"), err.Error())
}
