package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"hireny/job-board/internal/logger"
	"hireny/job-board/internal/models"
	"hireny/job-board/internal/repositories"
)

const (
	FeedbackJobMissing   = "The job listing for this application could not be found."
	FeedbackGenericError = "An error occurred during AI evaluation. Our team has been notified."

	DefaultScoreThreshold = 5

	recoveryBatchSize = 100
	pollBatchSize     = 10
)

// EvaluationQueue serializes résumé evaluations through a single in-process
// worker. Items are processed strictly in arrival order.
type EvaluationQueue interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(applicationID int64)
	// EvaluateNow runs one evaluation on the caller's goroutine, bypassing the
	// list. It returns an error only when no terminal state could be written.
	EvaluateNow(ctx context.Context, applicationID int64) error
	Len() int
	IsProcessing() bool
}

type QueueConfig struct {
	// ScoreThreshold is the lowest score that moves an application to review.
	ScoreThreshold int
	// PollInterval enables a poller that picks up pending applications
	// created outside this process. Zero disables it.
	PollInterval time.Duration
}

type evaluationQueue struct {
	apps      repositories.ApplicationRepository
	jobs      repositories.JobRepository
	evaluator Evaluator
	threshold int
	poll      time.Duration
	log       *zap.Logger

	mu         sync.Mutex
	items      []int64
	processing bool
	current    int64
	stopped    bool
	baseCtx    context.Context

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

func NewEvaluationQueue(
	apps repositories.ApplicationRepository,
	jobs repositories.JobRepository,
	evaluator Evaluator,
	cfg QueueConfig,
	log *zap.Logger,
) EvaluationQueue {
	threshold := cfg.ScoreThreshold
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}

	return &evaluationQueue{
		apps:      apps,
		jobs:      jobs,
		evaluator: evaluator,
		threshold: threshold,
		poll:      cfg.PollInterval,
		log:       logger.OrNop(log),
		baseCtx:   context.Background(),
		stopChan:  make(chan struct{}),
	}
}

// Start re-enqueues applications a previous process left behind and starts the
// optional pending poller.
func (q *evaluationQueue) Start(ctx context.Context) {
	q.mu.Lock()
	q.baseCtx = ctx
	q.mu.Unlock()

	q.recoverStranded(ctx)

	if q.poll > 0 {
		q.wg.Add(1)
		go q.pollPending(ctx)
	}

	q.log.Info("evaluation queue started",
		zap.Int("score_threshold", q.threshold),
		zap.Duration("poll_interval", q.poll))
}

// Stop lets the in-flight evaluation finish. Items still queued stay pending
// in the store and are picked up by the next Start.
func (q *evaluationQueue) Stop() {
	q.mu.Lock()
	q.stopped = true
	left := len(q.items)
	q.items = nil
	q.mu.Unlock()

	q.stopOnce.Do(func() { close(q.stopChan) })
	q.wg.Wait()

	q.log.Info("evaluation queue stopped", zap.Int("left_pending", left))
}

func (q *evaluationQueue) Enqueue(applicationID int64) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		q.log.Warn("queue stopped, application left pending", zap.Int64(logger.FieldApplicationID, applicationID))
		return
	}

	q.items = append(q.items, applicationID)
	size := len(q.items)
	startWorker := !q.processing
	if startWorker {
		q.processing = true
		q.wg.Add(1)
	}
	q.mu.Unlock()

	q.log.Info("application queued",
		zap.Int64(logger.FieldApplicationID, applicationID),
		zap.Int("queue_size", size))

	if startWorker {
		go q.drain()
	}
}

func (q *evaluationQueue) EvaluateNow(ctx context.Context, applicationID int64) error {
	return q.process(context.WithoutCancel(ctx), applicationID)
}

func (q *evaluationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *evaluationQueue) IsProcessing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processing
}

func (q *evaluationQueue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if q.stopped || len(q.items) == 0 {
			q.processing = false
			q.current = 0
			q.mu.Unlock()
			return
		}
		id := q.items[0]
		q.items = q.items[1:]
		q.current = id
		ctx := q.baseCtx
		q.mu.Unlock()

		if err := q.process(ctx, id); err != nil {
			q.log.Error("evaluation left without terminal state",
				zap.Int64(logger.FieldApplicationID, id), zap.Error(err))
		}
	}
}

// process runs one evaluation and persists its outcome. Every failure after
// the application is known ends in a terminal status.
func (q *evaluationQueue) process(ctx context.Context, id int64) (err error) {
	log := q.log.With(zap.Int64(logger.FieldApplicationID, id))

	defer func() {
		if r := recover(); r != nil {
			err = q.fail(ctx, log, id, fmt.Errorf("panic during evaluation: %v", r))
		}
	}()

	log.Info("starting evaluation")

	if err := q.apps.UpdateStatus(ctx, id, models.StatusEvaluating); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			log.Error("application not found")
			return nil
		}
		return q.fail(ctx, log, id, err)
	}

	app, err := q.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			log.Error("application not found")
			return nil
		}
		return q.fail(ctx, log, id, err)
	}

	job, err := q.jobs.FindByID(ctx, app.JobID)
	if err != nil {
		if !errors.Is(err, repositories.ErrRecordNotFound) {
			return q.fail(ctx, log, id, err)
		}
		log.Error("job not found", zap.Int64(logger.FieldJobID, app.JobID))
		reason := err.Error()
		return q.write(ctx, id, &repositories.EvaluationUpdate{
			Score:    0,
			Feedback: FeedbackJobMissing,
			Status:   models.StatusRejected,
			Error:    &reason,
		})
	}

	result, err := q.evaluator.EvaluateResume(ctx, app.ResumePath, job)
	if err != nil {
		return q.fail(ctx, log, id, err)
	}

	status := models.StatusUnderReview
	if result.Score < q.threshold {
		status = models.StatusRejected
	}

	if err := q.apps.UpdateEvaluation(ctx, id, &repositories.EvaluationUpdate{
		Score:    result.Score,
		Feedback: result.Feedback,
		Status:   status,
	}); err != nil {
		return q.fail(ctx, log, id, err)
	}

	log.Info("application evaluated",
		zap.Int("score", result.Score),
		zap.String("status", string(status)))
	return nil
}

func (q *evaluationQueue) fail(ctx context.Context, log *zap.Logger, id int64, cause error) error {
	log.Error("evaluation failed", zap.Error(cause))

	reason := cause.Error()
	return q.write(ctx, id, &repositories.EvaluationUpdate{
		Score:    0,
		Feedback: FeedbackGenericError,
		Status:   models.StatusRejected,
		Error:    &reason,
	})
}

func (q *evaluationQueue) write(ctx context.Context, id int64, update *repositories.EvaluationUpdate) error {
	if err := q.apps.UpdateEvaluation(ctx, id, update); err != nil {
		return fmt.Errorf("failed to record evaluation outcome: %w", err)
	}
	return nil
}

func (q *evaluationQueue) recoverStranded(ctx context.Context) {
	for _, status := range []models.ApplicationStatus{models.StatusEvaluating, models.StatusPending} {
		apps, err := q.apps.FindByStatus(ctx, status, recoveryBatchSize)
		if err != nil {
			q.log.Warn("failed to load applications for recovery",
				zap.String("status", string(status)), zap.Error(err))
			continue
		}
		if len(apps) > 0 {
			q.log.Info("recovering applications", zap.String("status", string(status)), zap.Int("count", len(apps)))
		}
		for _, app := range apps {
			q.Enqueue(app.ID)
		}
	}
}

func (q *evaluationQueue) pollPending(ctx context.Context) {
	defer q.wg.Done()
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := q.apps.FindByStatus(ctx, models.StatusPending, pollBatchSize)
			if err != nil {
				q.log.Warn("failed to fetch pending applications", zap.Error(err))
				continue
			}

			for _, app := range pending {
				if !q.queued(app.ID) {
					q.Enqueue(app.ID)
				}
			}
		}
	}
}

func (q *evaluationQueue) queued(id int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == id {
		return true
	}
	for _, item := range q.items {
		if item == id {
			return true
		}
	}
	return false
}
