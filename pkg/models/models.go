package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// TeamMember is a project contributor. Either field may be absent.
type TeamMember struct {
	Image *string `json:"image" yaml:"image"`
	Name  *string `json:"name" yaml:"name"`
}

// UnmarshalJSON accepts both the object form and the bare username string
// the search endpoint sometimes returns.
func (m *TeamMember) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*m = TeamMember{}
		if name != "" {
			m.Name = &name
		}
		return nil
	}

	type plain TeamMember
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = TeamMember(p)
	return nil
}

// Project is everything scraped from a public project page.
type Project struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Tagline     string       `json:"tagline" yaml:"tagline"`
	Images      []string     `json:"images" yaml:"images"`
	Description string       `json:"description" yaml:"description"`
	Tags        []string     `json:"tags" yaml:"tags"`
	GitHubLink  string       `json:"githubLink,omitempty" yaml:"github_link,omitempty"`
	Links       []string     `json:"links" yaml:"links"`
	Members     []TeamMember `json:"members" yaml:"members"`
	Photo       string       `json:"photo,omitempty" yaml:"photo,omitempty"`
}

// SearchCandidate is a search hit. It carries no description.
type SearchCandidate struct {
	ID      string       `json:"id" yaml:"id"`
	Photo   string       `json:"photo" yaml:"photo"`
	Title   string       `json:"title" yaml:"title"`
	Tagline string       `json:"tagline" yaml:"tagline"`
	Members []TeamMember `json:"members" yaml:"members"`
	Tags    []string     `json:"tags" yaml:"tags"`
}

// Project widens a candidate into a Project with empty page-only fields.
func (c SearchCandidate) Project() Project {
	return Project{
		ID:      c.ID,
		Photo:   c.Photo,
		Title:   c.Title,
		Tagline: c.Tagline,
		Members: c.Members,
		Tags:    c.Tags,
		Images:  []string{},
		Links:   []string{},
	}
}

// StructuredSummary is the model's four-field description of a project.
type StructuredSummary struct {
	ShortDescription  string `json:"shortDescription" yaml:"short_description"`
	ThematicFocus     string `json:"thematicFocus" yaml:"thematic_focus"`
	ObjectiveApproach string `json:"objectiveApproach" yaml:"objective_approach"`
	TargetUser        string `json:"targetUser" yaml:"target_user"`
}

// SimilaritySection is one scored dimension, 0 to 10.
type SimilaritySection struct {
	Score         float64 `json:"similarityScore" yaml:"similarity_score"`
	Justification string  `json:"scoreJustification" yaml:"score_justification"`
}

// SimilarityResult compares two descriptions. Overall.Score is always the
// truncated mean of the other three.
type SimilarityResult struct {
	ThematicFocus     SimilaritySection `json:"thematicFocus" yaml:"thematic_focus"`
	ObjectiveApproach SimilaritySection `json:"objectiveApproach" yaml:"objective_approach"`
	TargetUser        SimilaritySection `json:"targetUser" yaml:"target_user"`
	Overall           SimilaritySection `json:"overallScore" yaml:"overall_score"`
}

// ProjectRef is the subset of a project shown next to a similarity score.
type ProjectRef struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Tagline string   `json:"tagline" yaml:"tagline"`
	Images  []string `json:"images" yaml:"images"`
}

// SourceProject is the analysed project as echoed in the result.
type SourceProject struct {
	ProjectRef  `yaml:",inline"`
	Description string `json:"description" yaml:"description"`
}

// MarshalJSON flattens the embedded reference.
func (s SourceProject) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Tagline     string   `json:"tagline"`
		Images      []string `json:"images"`
		Description string   `json:"description"`
	}{s.ID, s.Title, s.Tagline, s.Images, s.Description})
}

// RankedProject is one entry of the similarity ranking.
type RankedProject struct {
	Project    ProjectRef               `json:"project" yaml:"project"`
	Similarity Parsed[SimilarityResult] `json:"similarity" yaml:"similarity"`
}

// OverallScore is the ranking key; unstructured results count as zero.
func (r RankedProject) OverallScore() float64 {
	if s, ok := r.Similarity.Structured(); ok {
		return s.Overall.Score
	}
	return 0
}

// Band is a coarse originality label.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// Score thresholds for the originality bands.
const (
	HighOriginalityThreshold   = 75
	MediumOriginalityThreshold = 45
)

// Originality condenses the ranking into a 0 to 100 score.
type Originality struct {
	Score int  `json:"score" yaml:"score"`
	Band  Band `json:"band" yaml:"band"`
}

// Label is the human-readable form of the band.
func (o Originality) Label() string {
	switch o.Band {
	case BandHigh:
		return "High Originality"
	case BandMedium:
		return "Medium Originality"
	default:
		return "Low Originality"
	}
}

// Description explains the band to the reader.
func (o Originality) Description() string {
	switch o.Band {
	case BandHigh:
		return "Your idea shows strong uniqueness compared to existing projects"
	case BandMedium:
		return "Your idea has some overlap with existing projects but maintains distinct elements"
	default:
		return "Your idea has significant overlap with existing projects"
	}
}

// Analysis is the full result of one pipeline run.
type Analysis struct {
	RunID       string                    `json:"runId" yaml:"run_id"`
	Project     SourceProject             `json:"project" yaml:"project"`
	Summary     Parsed[StructuredSummary] `json:"structuredDescription" yaml:"structured_description"`
	Keywords    []string                  `json:"keywords" yaml:"keywords"`
	Similar     []RankedProject           `json:"similar" yaml:"similar"`
	Originality Originality               `json:"originality" yaml:"originality"`
	AnalyzedAt  time.Time                 `json:"analyzedAt" yaml:"analyzed_at"`
}
