package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"scoreahack/pkg/models"
	"scoreahack/pkg/pipeline"
)

// StageMsg is sent when the pipeline enters a stage
type StageMsg struct {
	Stage pipeline.Stage
}

// CandidatesMsg carries the number of candidates to score
type CandidatesMsg struct {
	Count int
}

// ScoredMsg is sent for each scored candidate
type ScoredMsg struct {
	Project models.ProjectRef
	Overall float64
}

// DroppedMsg is sent for each candidate that was skipped
type DroppedMsg struct {
	ID    string
	Error error
}

// FinishedMsg ends the run
type FinishedMsg struct {
	Result *models.Analysis
	Error  error
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to refresh elapsed time
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case StageMsg:
		m.StartStage(msg.Stage)
		return m, nil

	case CandidatesMsg:
		m.SetTotal(msg.Count)
		m.AddLogMessage("INFO", fmt.Sprintf("Found %d candidate projects", msg.Count))
		return m, nil

	case ScoredMsg:
		m.AddScored(msg.Project, msg.Overall)
		return m, nil

	case DroppedMsg:
		m.AddDropped(msg.ID, msg.Error)
		m.AddLogMessage("WARN", fmt.Sprintf("Dropped %s: %v", msg.ID, msg.Error))
		return m, nil

	case FinishedMsg:
		m.Finish(msg.Result, msg.Error)
		if msg.Error != nil {
			m.AddLogMessage("ERROR", msg.Error.Error())
		} else {
			m.AddLogMessage("SUCCESS", "Analysis complete")
		}
		return m, tea.Quit

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c", "esc":
		if !m.done && m.cancel != nil {
			m.AddLogMessage("WARN", "Analysis cancelled by user")
			m.cancel()
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	return m, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*250, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
