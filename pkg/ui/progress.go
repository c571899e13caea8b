package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// Tally counts candidate outcomes during one analysis
type Tally struct {
	Total     int
	Scored    int
	Dropped   int
	BestScore float64
	BestTitle string
	StartTime time.Time
}

// NewTally creates a tally starting now
func NewTally() *Tally {
	return &Tally{StartTime: time.Now()}
}

// Score records a scored candidate and tracks the closest match
func (t *Tally) Score(title string, overall float64) {
	t.Scored++
	if t.BestTitle == "" || overall > t.BestScore {
		t.BestScore = overall
		t.BestTitle = title
	}
}

// Drop records a candidate that could not be scored
func (t *Tally) Drop() {
	t.Dropped++
}

// Done is the number of candidates with an outcome
func (t *Tally) Done() int {
	return t.Scored + t.Dropped
}

// Fraction is Done over Total, 0 when nothing was found
func (t *Tally) Fraction() float64 {
	if t.Total <= 0 {
		return 0
	}
	f := float64(t.Done()) / float64(t.Total)
	if f > 1 {
		f = 1
	}
	return f
}

// Bar renders a fixed-width progress bar with counts
func (t *Tally) Bar(width int) string {
	filled := int(t.Fraction() * float64(width))
	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, width-filled)
	return fmt.Sprintf("[%s] %d/%d", bar, t.Done(), t.Total)
}

// Elapsed returns the time since the tally started
func (t *Tally) Elapsed() time.Duration {
	return time.Since(t.StartTime)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
