package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"scoreahack/pkg/models"
	"scoreahack/pkg/pipeline"
)

// TUI renders an analysis live. It satisfies pipeline.Observer, so it can be
// handed straight to Analyzer.SetObserver while Run owns the terminal.
type TUI struct {
	program *tea.Program
	model   *Model
}

var _ pipeline.Observer = (*TUI)(nil)

// New creates a TUI for label. cancel aborts the analysis when the user quits.
func New(label string, cancel context.CancelFunc, opts ...tea.ProgramOption) *TUI {
	model := NewModel(label, cancel)
	return &TUI{
		program: tea.NewProgram(&model, opts...),
		model:   &model,
	}
}

// Run blocks until the analysis finishes or the user quits
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

func (t *TUI) StageStarted(stage pipeline.Stage) {
	t.Send(StageMsg{Stage: stage})
}

func (t *TUI) CandidatesFound(n int) {
	t.Send(CandidatesMsg{Count: n})
}

func (t *TUI) CandidateScored(ref models.ProjectRef, overall float64) {
	t.Send(ScoredMsg{Project: ref, Overall: overall})
}

func (t *TUI) CandidateDropped(id string, err error) {
	t.Send(DroppedMsg{ID: id, Error: err})
}

func (t *TUI) Finished(result *models.Analysis, err error) {
	t.Send(FinishedMsg{Result: result, Error: err})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}
