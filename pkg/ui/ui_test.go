package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoreahack/pkg/models"
	"scoreahack/pkg/pipeline"
)

func init() {
	SetColor(false)
}

func TestTally(t *testing.T) {
	tally := NewTally()
	assert.Equal(t, 0.0, tally.Fraction())

	tally.Total = 4
	tally.Score("Alpha", 3)
	tally.Score("Beta", 7)
	tally.Score("Gamma", 7)
	tally.Drop()

	assert.Equal(t, 4, tally.Done())
	assert.Equal(t, 1.0, tally.Fraction())
	assert.Equal(t, "Beta", tally.BestTitle, "ties keep the first best")
	assert.Equal(t, 7.0, tally.BestScore)
	assert.Equal(t, "[██████████] 4/4", tally.Bar(10))
}

func TestTallyBarPartial(t *testing.T) {
	tally := &Tally{Total: 4}
	tally.Score("Alpha", 1)
	assert.Equal(t, "[██░░░░░░░░] 1/4", tally.Bar(10))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

func TestProgressDisplay(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "fridge-friend", false)

	p.StageStarted(pipeline.StageSearch)
	p.CandidatesFound(2)
	p.CandidateScored(models.ProjectRef{ID: "a", Title: "Alpha"}, 6)
	p.CandidateDropped("b", errors.New("no description"))
	p.Finished(&models.Analysis{
		Originality: models.Originality{Score: 40, Band: models.BandLow},
	}, nil)

	out := buf.String()
	assert.Contains(t, out, "Searching for similar projects")
	assert.Contains(t, out, "2 candidate projects")
	assert.Contains(t, out, "closest: Alpha")
	assert.Contains(t, out, "Analyzed fridge-friend")
	assert.Contains(t, out, "1 scored, 1 dropped")
	assert.Contains(t, out, "Low Originality (40/100)")

	tally := p.Tally()
	assert.Equal(t, 1, tally.Scored)
	assert.Equal(t, 1, tally.Dropped)
}

func TestProgressDisplayVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "idea", true)

	p.CandidateScored(models.ProjectRef{ID: "a", Title: "Alpha"}, 6)
	p.CandidateDropped("b", errors.New("no description"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "✓ Alpha • 6/10")
	assert.Contains(t, lines[1], "✗ b • no description")
}

func TestProgressDisplayFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "missing", false)

	p.Finished(nil, errors.New("project not found"))
	assert.Contains(t, buf.String(), "Analysis of missing failed")
	assert.Contains(t, buf.String(), "project not found")
}

type recordingSender struct {
	titles   []string
	messages []string
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return errors.New("no notification daemon")
}

func TestNotifier(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifierWithSender(sender, "fridge-friend")

	n.StageStarted(pipeline.StageFetch)
	n.CandidatesFound(3)
	assert.Empty(t, sender.titles, "only Finished notifies")

	n.Finished(&models.Analysis{
		Similar:     make([]models.RankedProject, 3),
		Originality: models.Originality{Score: 80, Band: models.BandHigh},
	}, nil)
	n.Finished(nil, errors.New("timeout"))

	require.Len(t, sender.titles, 2)
	assert.Equal(t, "Score a Hack: High Originality", sender.titles[0])
	assert.Equal(t, "fridge-friend scored 80/100 against 3 similar projects", sender.messages[0])
	assert.Equal(t, "Score a Hack: analysis failed", sender.titles[1])
	assert.Equal(t, "fridge-friend: timeout", sender.messages[1])
}

func TestNotifierWithoutSender(t *testing.T) {
	n := NewNotifierWithSender(nil, "x")
	assert.NotPanics(t, func() { n.Finished(nil, nil) })
}

func TestObservers(t *testing.T) {
	var a, b bytes.Buffer
	obs := Observers(NewProgressDisplay(&a, "x", true), nil, NewProgressDisplay(&b, "x", true))

	obs.CandidateScored(models.ProjectRef{Title: "Alpha"}, 2)
	assert.Contains(t, a.String(), "Alpha")
	assert.Contains(t, b.String(), "Alpha")
}

func TestPrintersRespectQuiet(t *testing.T) {
	var buf bytes.Buffer
	prev := Output()
	SetOutput(&buf)
	defer SetOutput(prev)

	SetQuiet(true)
	PrintInfo("Provider", "openai")
	PrintError("failed", "boom")
	SetQuiet(false)
	PrintSuccess("done")

	out := buf.String()
	assert.NotContains(t, out, "Provider")
	assert.Contains(t, out, "failed: boom")
	assert.Contains(t, out, "done")
}

func TestPsEscape(t *testing.T) {
	assert.Equal(t, "it''s", psEscape("it's"))
}
