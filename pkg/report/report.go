package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
	"scoreahack/pkg/models"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Renderer writes analyses in one of the supported formats
type Renderer struct {
	format string
	color  bool
}

// NewRenderer creates a renderer. Color only affects the text format.
func NewRenderer(format string, color bool) (*Renderer, error) {
	switch f := strings.ToLower(format); f {
	case "", FormatText:
		return &Renderer{format: FormatText, color: color}, nil
	case FormatJSON, FormatYAML:
		return &Renderer{format: f}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Format returns the selected format
func (r *Renderer) Format() string {
	return r.format
}

// Render writes v. Analyses get the full text layout; other values are
// rendered as JSON when the text format is selected.
func (r *Renderer) Render(w io.Writer, v interface{}) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	switch a := v.(type) {
	case *models.Analysis:
		_, err := io.WriteString(w, r.text(a))
		return err
	case []models.SearchCandidate:
		_, err := io.WriteString(w, r.candidates(a))
		return err
	case *models.Project:
		_, err := io.WriteString(w, r.project(a))
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type styles struct {
	title, heading, label, dim, high, medium, low lipgloss.Style
}

func (r *Renderer) styles() styles {
	if !r.color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF")),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF00FF")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		high:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00")),
		medium:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFF00")),
		low:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0040")),
	}
}

func (r *Renderer) bandStyle(s styles, b models.Band) lipgloss.Style {
	switch b {
	case models.BandHigh:
		return s.high
	case models.BandMedium:
		return s.medium
	default:
		return s.low
	}
}

func (r *Renderer) text(a *models.Analysis) string {
	s := r.styles()
	var b strings.Builder

	title := a.Project.Title
	if title == "" {
		title = a.Project.ID
	}
	b.WriteString(s.title.Render(title) + "\n")
	if a.Project.Tagline != "" {
		b.WriteString(s.dim.Render(a.Project.Tagline) + "\n")
	}
	b.WriteString("\n")

	band := r.bandStyle(s, a.Originality.Band)
	fmt.Fprintf(&b, "%s %s  %s\n", s.label.Render("Originality:"),
		band.Render(fmt.Sprintf("%d/100", a.Originality.Score)), band.Render(a.Originality.Label()))
	b.WriteString(s.dim.Render(a.Originality.Description()) + "\n\n")

	b.WriteString(s.heading.Render("Summary") + "\n")
	if summary, ok := a.Summary.Structured(); ok {
		writeField(&b, s, "Description", summary.ShortDescription)
		writeField(&b, s, "Thematic focus", summary.ThematicFocus)
		writeField(&b, s, "Objective", summary.ObjectiveApproach)
		writeField(&b, s, "Target user", summary.TargetUser)
	} else if raw := strings.TrimSpace(a.Summary.Raw()); raw != "" {
		b.WriteString("  " + raw + "\n")
	} else {
		b.WriteString(s.dim.Render("  unavailable") + "\n")
	}
	b.WriteString("\n")

	keywords := strings.Join(a.Keywords, " ")
	if keywords == "" {
		keywords = "none"
	}
	writeField(&b, s, "Keywords", keywords)
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s (%d)\n", s.heading.Render("Similar projects"), len(a.Similar))
	if len(a.Similar) == 0 {
		b.WriteString(s.dim.Render("  No similar projects found.") + "\n")
	}
	for i, p := range a.Similar {
		score := "n/a"
		if p.Similarity.IsStructured() {
			score = fmt.Sprintf("%.0f/10", p.OverallScore())
		}
		fmt.Fprintf(&b, "  %2d. %-40s %s\n", i+1, truncate(p.Project.Title, 40), s.label.Render(score))
		if sim, ok := p.Similarity.Structured(); ok && sim.Overall.Justification != "" {
			b.WriteString("      " + s.dim.Render(sim.Overall.Justification) + "\n")
		}
	}

	fmt.Fprintf(&b, "\n%s\n", s.dim.Render(fmt.Sprintf("run %s at %s", a.RunID, a.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))))
	return b.String()
}

func (r *Renderer) candidates(cs []models.SearchCandidate) string {
	s := r.styles()
	var b strings.Builder
	if len(cs) == 0 {
		return s.dim.Render("No projects found.") + "\n"
	}
	for i, c := range cs {
		fmt.Fprintf(&b, "%2d. %s  %s\n", i+1, s.title.Render(c.Title), s.dim.Render(c.ID))
		if c.Tagline != "" {
			b.WriteString("    " + c.Tagline + "\n")
		}
	}
	return b.String()
}

func (r *Renderer) project(p *models.Project) string {
	s := r.styles()
	var b strings.Builder
	b.WriteString(s.title.Render(p.Title) + "\n")
	if p.Tagline != "" {
		b.WriteString(s.dim.Render(p.Tagline) + "\n")
	}
	b.WriteString("\n")
	if len(p.Tags) > 0 {
		writeField(&b, s, "Built with", strings.Join(p.Tags, ", "))
	}
	if p.GitHubLink != "" {
		writeField(&b, s, "GitHub", p.GitHubLink)
	}
	for _, l := range p.Links {
		writeField(&b, s, "Link", l)
	}
	var names []string
	for _, m := range p.Members {
		if m.Name != nil {
			names = append(names, *m.Name)
		}
	}
	if len(names) > 0 {
		writeField(&b, s, "Team", strings.Join(names, ", "))
	}
	b.WriteString("\n" + p.Description + "\n")
	return b.String()
}

func writeField(b *strings.Builder, s styles, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s %s\n", s.label.Render(label+":"), value)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
