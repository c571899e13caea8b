package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scoreahack/pkg/pipeline"
	"scoreahack/pkg/ui"
)

const (
	topCandidates = 5
	visibleLogs   = 4
)

// View renders the live analysis
func (m *Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	inner := width - 6
	if inner < 30 {
		inner = 30
	}

	sections := []string{
		titleBarStyle.Render("SCORE A HACK • " + m.label),
		m.renderStages(inner),
		m.renderCandidates(inner),
	}
	if logs := m.renderLogs(); logs != "" {
		sections = append(sections, logs)
	}
	if m.done {
		sections = append(sections, m.renderOutcome())
	} else if m.showHelp {
		sections = append(sections, helpStyle.Render("q/esc cancel • ctrl+l clear log • ? close help"))
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m *Model) renderStages(width int) string {
	var lines []string
	for _, stage := range stageOrder {
		label := stageTitle(stage)
		switch {
		case stage == m.current:
			lines = append(lines, stageActiveStyle.Render(m.spinner.View()+" "+label))
		case m.started[stage]:
			lines = append(lines, stageDoneStyle.Render("✓ "+label))
		default:
			lines = append(lines, stagePendingStyle.Render("  "+label))
		}
	}

	elapsed := fmt.Sprintf("%s %s",
		statsLabelStyle.Render("Elapsed:"),
		statsValueStyle.Render(ui.FormatDuration(m.tally.Elapsed())))
	lines = append(lines, "", elapsed)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(" PIPELINE "), strings.Join(lines, "\n")),
	)
}

func (m *Model) renderCandidates(width int) string {
	title := titleStyle.Render(" CANDIDATES ")

	if m.tally.Total == 0 && len(m.candidates) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("Waiting for search results")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	m.bar.Width = width - 20
	if m.bar.Width < 10 {
		m.bar.Width = 10
	}
	counts := fmt.Sprintf("%d/%d", m.tally.Done(), m.tally.Total)
	if m.tally.Dropped > 0 {
		counts += " " + warningStyle.Render(fmt.Sprintf("(%d dropped)", m.tally.Dropped))
	}
	rows := []string{m.bar.ViewAs(m.tally.Fraction()) + " " + counts, ""}

	for _, c := range m.TopCandidates(topCandidates) {
		score := ScoreStyle(c.Score).Render(fmt.Sprintf("%4.1f", c.Score))
		rows = append(rows, fmt.Sprintf("%s  %s", score, truncate(c.Title, width-12)))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")),
	)
}

func (m *Model) renderLogs() string {
	if len(m.logMessages) == 0 {
		return ""
	}
	start := len(m.logMessages) - visibleLogs
	if start < 0 {
		start = 0
	}
	var lines []string
	for _, msg := range m.logMessages[start:] {
		lines = append(lines, fmt.Sprintf("%s %s",
			logTimestampStyle.Render(msg.Time.Format("15:04:05")),
			lipgloss.NewStyle().Foreground(msg.Color).Render(msg.Message)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderOutcome() string {
	if m.err != nil {
		return errorStyle.Render("✗ " + m.err.Error())
	}
	if m.result == nil {
		return successStyle.Render("✓ Done")
	}
	o := m.result.Originality
	return successStyle.Render(fmt.Sprintf("✓ %s • %d/100", o.Label(), o.Score))
}

func stageTitle(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageFetch:
		return "Fetch project"
	case pipeline.StageSummarize:
		return "Summarize and extract keywords"
	case pipeline.StageSearch:
		return "Search similar projects"
	case pipeline.StageScore:
		return "Score candidates"
	case pipeline.StageRank:
		return "Rank and rate originality"
	}
	return string(stage)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
