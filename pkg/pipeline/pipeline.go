package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"scoreahack/internal/enrich"
	"scoreahack/pkg/analysis"
	"scoreahack/pkg/config"
	"scoreahack/pkg/errors"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
)

// DefaultMinDescriptionLength is the shortest description worth analysing, in runes
const DefaultMinDescriptionLength = 50

// IdeaTitle labels free-text input in results
const IdeaTitle = "Your idea"

// Deps are the collaborators of an Analyzer
type Deps struct {
	Source     ProjectSource
	Summarizer Summarizer
	Keywords   KeywordExtractor
	Scorer     SimilarityScorer
}

// Analyzer runs the originality pipeline: fetch, summarise and extract
// keywords, search, score candidates, rank.
type Analyzer struct {
	deps     Deps
	cfg      config.AnalysisConfig
	logger   logger.Logger
	observer Observer
	now      func() time.Time
}

// New creates an Analyzer
func New(deps Deps, cfg config.AnalysisConfig, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.GetLogger()
	}
	if cfg.MinDescriptionLength <= 0 {
		cfg.MinDescriptionLength = DefaultMinDescriptionLength
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = enrich.DefaultWorkers
	}
	return &Analyzer{
		deps:     deps,
		cfg:      cfg,
		logger:   log.WithField("component", "pipeline"),
		observer: nopObserver{},
		now:      time.Now,
	}
}

// SetObserver routes progress callbacks to o
func (a *Analyzer) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	a.observer = o
}

// Analyze runs the pipeline for a Devpost project id
func (a *Analyzer) Analyze(ctx context.Context, id string) (*models.Analysis, error) {
	ctx, cancel, runID := a.begin(ctx)
	defer cancel()
	log := a.logger.WithContext(ctx).WithField("project_id", id)

	result, err := a.analyzeProject(ctx, runID, id, log)
	a.observer.Finished(result, err)
	return result, err
}

// AnalyzeURL extracts the project id from a Devpost URL and analyses it
func (a *Analyzer) AnalyzeURL(ctx context.Context, rawURL string) (*models.Analysis, error) {
	id, err := ProjectID(rawURL)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, id)
}

// AnalyzeText runs the pipeline for free-text idea input. The idea has no
// project id, so no candidate is excluded as the source.
func (a *Analyzer) AnalyzeText(ctx context.Context, idea string) (*models.Analysis, error) {
	ctx, cancel, runID := a.begin(ctx)
	defer cancel()
	log := a.logger.WithContext(ctx).WithField("source", "idea")

	source := models.SourceProject{
		ProjectRef: models.ProjectRef{
			Title:  IdeaTitle,
			Images: []string{},
		},
		Description: strings.TrimSpace(idea),
	}
	result, err := a.run(ctx, runID, source, log)
	a.observer.Finished(result, err)
	return result, err
}

func (a *Analyzer) begin(ctx context.Context) (context.Context, context.CancelFunc, string) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	if a.cfg.Timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		return ctx, cancel, runID
	}
	ctx, cancel := context.WithCancel(ctx)
	return ctx, cancel, runID
}

func (a *Analyzer) analyzeProject(ctx context.Context, runID, id string, log logger.Logger) (*models.Analysis, error) {
	a.observer.StageStarted(StageFetch)
	logger.LogStage(log, string(StageFetch), nil)

	project := a.deps.Source.GetProject(ctx, id)
	if project == nil || project.Description == "" {
		log.Warn("source project missing or has no description")
		return nil, fmt.Errorf("%w: %s", errors.ErrProjectNotFound, id)
	}

	images := project.Images
	if images == nil {
		images = []string{}
	}
	source := models.SourceProject{
		ProjectRef: models.ProjectRef{
			ID:      project.ID,
			Title:   project.Title,
			Tagline: project.Tagline,
			Images:  images,
		},
		Description: project.Description,
	}
	return a.run(ctx, runID, source, log)
}

// run is everything after the source description is known
func (a *Analyzer) run(ctx context.Context, runID string, source models.SourceProject, log logger.Logger) (*models.Analysis, error) {
	start := a.now()

	if n := utf8.RuneCountInString(strings.TrimSpace(source.Description)); n < a.cfg.MinDescriptionLength {
		log.WarnWithFields("description too short to analyse", map[string]interface{}{
			"length":     n,
			"min_length": a.cfg.MinDescriptionLength,
		})
		return nil, fmt.Errorf("%w: %d characters, need %d", errors.ErrDescriptionTooShort, n, a.cfg.MinDescriptionLength)
	}

	a.observer.StageStarted(StageSummarize)
	logger.LogStage(log, string(StageSummarize), nil)

	var (
		summary  models.Parsed[models.StructuredSummary]
		keywords []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary = a.deps.Summarizer.Summarize(gctx, source.Description)
		return nil
	})
	g.Go(func() error {
		keywords = a.deps.Keywords.Extract(gctx, source.Description)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if keywords == nil {
		keywords = []string{}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	a.observer.StageStarted(StageSearch)
	var candidates []models.SearchCandidate
	if analysis.IsNone(keywords) {
		log.Info("no usable keywords, skipping search")
	} else {
		query := strings.Join(keywords, " ")
		logger.LogStage(log, string(StageSearch), map[string]interface{}{"query": query})
		candidates = a.deps.Source.Search(ctx, query)
	}
	candidates = excludeSource(candidates, source.ID)
	a.observer.CandidatesFound(len(candidates))

	a.observer.StageStarted(StageScore)
	logger.LogStage(log, string(StageScore), map[string]interface{}{"candidates": len(candidates)})
	ranked := a.score(ctx, source.Description, candidates, log)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	a.observer.StageStarted(StageRank)
	Rank(ranked)

	result := &models.Analysis{
		RunID:       runID,
		Project:     source,
		Summary:     summary,
		Keywords:    keywords,
		Similar:     ranked,
		Originality: ScoreOriginality(ranked),
		AnalyzedAt:  a.now().UTC(),
	}

	log.InfoWithFields("analysis complete", map[string]interface{}{
		"candidates":  len(candidates),
		"ranked":      len(ranked),
		"originality": result.Originality.Score,
		"duration_ms": a.now().Sub(start).Milliseconds(),
	})
	return result, nil
}

func (a *Analyzer) score(ctx context.Context, description string, candidates []models.SearchCandidate, log logger.Logger) []models.RankedProject {
	ranked := []models.RankedProject{}
	if len(candidates) == 0 {
		return ranked
	}

	pool := enrich.NewWorkerPool(ctx, a.cfg.Concurrency, a.deps.Source, a.deps.Scorer, description, log)
	pool.OnResult(func(r enrich.Result) {
		if r.Ranked == nil {
			a.observer.CandidateDropped(r.Job.Candidate.ID, r.Error)
			return
		}
		a.observer.CandidateScored(r.Ranked.Project, r.Ranked.OverallScore())
	})

	dropped := 0
	for _, r := range pool.Run(candidates) {
		if r.Ranked == nil {
			dropped++
			continue
		}
		ranked = append(ranked, *r.Ranked)
	}
	if dropped > 0 {
		log.InfoWithFields("candidates dropped", map[string]interface{}{"dropped": dropped})
	}
	return ranked
}

// excludeSource drops candidates without an id and the source project itself
func excludeSource(candidates []models.SearchCandidate, sourceID string) []models.SearchCandidate {
	out := make([]models.SearchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == "" || c.ID == sourceID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Rank orders projects by overall score, highest first. Ties keep their
// search order.
func Rank(ranked []models.RankedProject) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverallScore() > ranked[j].OverallScore()
	})
}
