package enrich

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
)

// DefaultWorkers is used when the configured concurrency is not positive
const DefaultWorkers = 20

// Job is one candidate to enrich. Index is its position in the search results.
type Job struct {
	Index     int
	Candidate models.SearchCandidate
}

// Result is the outcome of a job. Ranked is nil when the candidate was dropped.
type Result struct {
	Job      Job
	Ranked   *models.RankedProject
	Error    error
	Duration time.Duration
}

// ProjectFetcher loads a full project page, returning nil on failure
type ProjectFetcher interface {
	GetProject(ctx context.Context, id string) *models.Project
}

// Scorer compares two descriptions
type Scorer interface {
	Score(ctx context.Context, source, candidate string) models.Parsed[models.SimilarityResult]
}

// ErrNoDescription marks a candidate whose page has nothing to compare
var ErrNoDescription = fmt.Errorf("candidate has no description")

// WorkerPool fetches and scores candidates concurrently
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	fetcher     ProjectFetcher
	scorer      Scorer
	source      string
	onResult    func(Result)
	logger      logger.Logger
}

// NewWorkerPool creates a pool comparing candidates against source. The
// pool stops early when ctx is cancelled.
func NewWorkerPool(
	ctx context.Context,
	numWorkers int,
	fetcher ProjectFetcher,
	scorer Scorer,
	source string,
	log logger.Logger,
) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	if log == nil {
		log = logger.GetLogger()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		fetcher:     fetcher,
		scorer:      scorer,
		source:      source,
		logger:      log.WithField("component", "enrich"),
	}
}

// OnResult registers fn to be called by Run for each result as it arrives.
// fn runs on the goroutine that called Run.
func (wp *WorkerPool) OnResult(fn func(Result)) {
	wp.onResult = fn
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for in-flight jobs and closes Results
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Debug("Worker pool stopped")
}

// Submit queues a job, failing once the pool's context is done
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the channel results are delivered on
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

// Run submits every candidate, waits for all of them and returns the
// results in submission order.
func (wp *WorkerPool) Run(candidates []models.SearchCandidate) []Result {
	wp.Start()

	go func() {
		defer wp.Stop()
		for i, c := range candidates {
			if err := wp.Submit(Job{Index: i, Candidate: c}); err != nil {
				wp.logger.WithError(err).Warn("stopped submitting candidates")
				return
			}
		}
	}()

	results := make([]Result, len(candidates))
	seen := make([]bool, len(candidates))
	for r := range wp.resultQueue {
		if wp.onResult != nil {
			wp.onResult(r)
		}
		results[r.Job.Index] = r
		seen[r.Job.Index] = true
	}

	out := results[:0]
	for i, r := range results {
		if seen[i] {
			out = append(out, r)
		}
	}
	return out
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob fetches the candidate page and scores it. A panic inside the
// fetcher or scorer only fails this job.
func (wp *WorkerPool) processJob(job Job, workerID int) (result Result) {
	start := time.Now()
	result.Job = job
	id := job.Candidate.ID

	defer func() {
		if r := recover(); r != nil {
			result.Ranked = nil
			result.Error = fmt.Errorf("candidate %s panicked: %v", id, r)
			wp.logger.ErrorWithFields("Worker recovered from panic", map[string]interface{}{
				"worker_id":  workerID,
				"project_id": id,
				"panic":      fmt.Sprint(r),
			})
		}
		result.Duration = time.Since(start)
	}()

	project := wp.fetcher.GetProject(wp.ctx, id)
	if project == nil {
		result.Error = fmt.Errorf("candidate %s could not be fetched", id)
		return result
	}
	if project.Description == "" {
		result.Error = ErrNoDescription
		wp.logger.DebugWithFields("Skipping candidate without description", map[string]interface{}{
			"project_id": id,
		})
		return result
	}

	similarity := wp.scorer.Score(wp.ctx, wp.source, project.Description)
	result.Ranked = &models.RankedProject{
		Project: models.ProjectRef{
			ID:      project.ID,
			Title:   project.Title,
			Tagline: project.Tagline,
			Images:  project.Images,
		},
		Similarity: similarity,
	}

	wp.logger.DebugWithFields("Candidate scored", map[string]interface{}{
		"worker_id":  workerID,
		"project_id": id,
		"structured": similarity.IsStructured(),
	})
	return result
}

// GetQueueSize returns the number of queued jobs
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}
