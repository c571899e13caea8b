package tui

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scoreahack/pkg/models"
	"scoreahack/pkg/pipeline"
	"scoreahack/pkg/ui"
)

// stageOrder is the order stages appear in the checklist
var stageOrder = []pipeline.Stage{
	pipeline.StageFetch,
	pipeline.StageSummarize,
	pipeline.StageSearch,
	pipeline.StageScore,
	pipeline.StageRank,
}

// CandidateState is the outcome of one candidate
type CandidateState int

const (
	CandidateScored CandidateState = iota
	CandidateDropped
)

// CandidateItem is one row of the candidate panel
type CandidateItem struct {
	ID      string
	Title   string
	Score   float64
	State   CandidateState
	Error   error
	Arrived time.Time
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the live view of a single analysis
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	label      string
	current    pipeline.Stage
	started    map[pipeline.Stage]bool
	tally      *ui.Tally
	candidates []CandidateItem

	result *models.Analysis
	err    error
	done   bool
	cancel context.CancelFunc

	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int
}

// NewModel creates a model for analysing label. cancel is invoked when the
// user quits before the run finishes; it may be nil.
func NewModel(label string, cancel context.CancelFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		spinner:        s,
		bar:            bar,
		label:          label,
		started:        make(map[pipeline.Stage]bool),
		tally:          ui.NewTally(),
		cancel:         cancel,
		maxLogMessages: 50,
	}
}

// Init starts the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// StartStage marks stage as the current one
func (m *Model) StartStage(stage pipeline.Stage) {
	m.current = stage
	m.started[stage] = true
}

// SetTotal records how many candidates will be scored
func (m *Model) SetTotal(n int) {
	m.tally.Total = n
}

// AddScored records a scored candidate
func (m *Model) AddScored(ref models.ProjectRef, overall float64) {
	m.tally.Score(ref.Title, overall)
	m.candidates = append(m.candidates, CandidateItem{
		ID:      ref.ID,
		Title:   ref.Title,
		Score:   overall,
		State:   CandidateScored,
		Arrived: time.Now(),
	})
}

// AddDropped records a candidate that could not be scored
func (m *Model) AddDropped(id string, err error) {
	m.tally.Drop()
	m.candidates = append(m.candidates, CandidateItem{
		ID:      id,
		Title:   id,
		State:   CandidateDropped,
		Error:   err,
		Arrived: time.Now(),
	})
}

// Finish stores the outcome of the run
func (m *Model) Finish(result *models.Analysis, err error) {
	m.result = result
	m.err = err
	m.done = true
	m.current = ""
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR":
		color = alertRed
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// TopCandidates returns the n closest scored candidates, highest first
func (m *Model) TopCandidates(n int) []CandidateItem {
	var scored []CandidateItem
	for _, c := range m.candidates {
		if c.State == CandidateScored {
			scored = append(scored, c)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// Done reports whether the run has finished
func (m *Model) Done() bool {
	return m.done
}

// Err returns the run's error, if it finished with one
func (m *Model) Err() error {
	return m.err
}
