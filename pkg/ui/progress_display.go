package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"scoreahack/pkg/models"
	"scoreahack/pkg/pipeline"
)

var stageLabels = map[pipeline.Stage]string{
	pipeline.StageFetch:     "Fetching project page",
	pipeline.StageSummarize: "Summarizing and extracting keywords",
	pipeline.StageSearch:    "Searching for similar projects",
	pipeline.StageScore:     "Scoring candidates",
	pipeline.StageRank:      "Ranking",
}

// ProgressDisplay prints a minimal line-based progress view of an analysis.
// It satisfies pipeline.Observer.
type ProgressDisplay struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	tally   *Tally
	inLine  bool
	verbose bool
}

// NewProgressDisplay creates a display writing to w. In verbose mode every
// candidate gets its own line instead of a redrawn bar.
func NewProgressDisplay(w io.Writer, label string, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		w:       w,
		label:   label,
		tally:   NewTally(),
		verbose: verbose,
	}
}

// StageStarted prints the stage heading
func (p *ProgressDisplay) StageStarted(stage pipeline.Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label, ok := stageLabels[stage]
	if !ok {
		label = string(stage)
	}
	p.endLine()
	fmt.Fprintf(p.w, "%s %s\n", Magenta("→"), label)
}

// CandidatesFound sets the bar total
func (p *ProgressDisplay) CandidatesFound(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tally.Total = n
	fmt.Fprintf(p.w, "  %s %d candidate projects\n", Dim("•"), n)
}

// CandidateScored advances the bar
func (p *ProgressDisplay) CandidateScored(ref models.ProjectRef, overall float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tally.Score(ref.Title, overall)
	if p.verbose {
		fmt.Fprintf(p.w, "  %s %s • %s\n", Green("✓"), ref.Title, Dim(fmt.Sprintf("%.0f/10", overall)))
		return
	}
	p.printBar()
}

// CandidateDropped counts a candidate that was skipped
func (p *ProgressDisplay) CandidateDropped(id string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tally.Drop()
	if p.verbose {
		fmt.Fprintf(p.w, "  %s %s • %v\n", Red("✗"), id, err)
		return
	}
	p.printBar()
}

// Finished prints the closing summary
func (p *ProgressDisplay) Finished(result *models.Analysis, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.endLine()
	elapsed := FormatDuration(p.tally.Elapsed())
	if err != nil {
		fmt.Fprintf(p.w, "%s Analysis of %s failed after %s: %v\n", Red("✗"), p.label, elapsed, err)
		return
	}

	fmt.Fprintf(p.w, "%s Analyzed %s in %s\n", Green("✓"), p.label, elapsed)
	fmt.Fprintf(p.w, "  %s %d scored", Dim("•"), p.tally.Scored)
	if p.tally.Dropped > 0 {
		fmt.Fprintf(p.w, ", %s", Red(fmt.Sprintf("%d dropped", p.tally.Dropped)))
	}
	fmt.Fprintln(p.w)
	if result != nil {
		fmt.Fprintf(p.w, "  %s %s (%d/100)\n", Dim("•"), result.Originality.Label(), result.Originality.Score)
	}
}

// Tally returns a copy of the counts so far
func (p *ProgressDisplay) Tally() Tally {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.tally
}

func (p *ProgressDisplay) printBar() {
	line := fmt.Sprintf("  %s", p.tally.Bar(20))
	if p.tally.BestTitle != "" {
		line += fmt.Sprintf(" • closest: %s", truncate(p.tally.BestTitle, 40))
	}
	if p.tally.Dropped > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d dropped", p.tally.Dropped)))
	}
	fmt.Fprintf(p.w, "\r%s\r%s", strings.Repeat(" ", 100), line)
	p.inLine = true
}

func (p *ProgressDisplay) endLine() {
	if p.inLine {
		fmt.Fprintln(p.w)
		p.inLine = false
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
