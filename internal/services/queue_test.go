package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hireny/job-board/internal/models"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func scoreBy(scores map[string]int) func(string, *models.Job) (*models.EvaluationResult, error) {
	return func(ref string, _ *models.Job) (*models.EvaluationResult, error) {
		return &models.EvaluationResult{Score: scores[ref], Feedback: "feedback for " + ref}, nil
	}
}

func application(id, jobID int64, resume string) *models.Application {
	return &models.Application{ID: id, JobID: jobID, FullName: "Candidate", Email: "c@example.com", ResumePath: resume}
}

func TestQueueProcessesInArrivalOrder(t *testing.T) {
	apps := newMemoryApplications(
		application(1, 1, "a.txt"),
		application(2, 1, "b.txt"),
		application(3, 1, "c.txt"),
	)
	eval := &funcEvaluator{fn: scoreBy(map[string]int{"a.txt": 9, "b.txt": 3, "c.txt": 5})}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 5}, nil)

	q.Enqueue(1)
	q.Enqueue(2)
	q.Enqueue(3)

	require.Eventually(t, func() bool { return len(apps.writeOrder()) == 3 }, waitFor, tick)
	assert.Equal(t, []int64{1, 2, 3}, apps.writeOrder())
	assert.Equal(t, models.StatusUnderReview, apps.get(1).Status)
	assert.Equal(t, models.StatusRejected, apps.get(2).Status)
	assert.Equal(t, models.StatusUnderReview, apps.get(3).Status)
	assert.Equal(t, "feedback for b.txt", *apps.get(2).AIFeedback)
	assert.Nil(t, apps.get(1).EvaluationError)

	require.Eventually(t, func() bool { return !q.IsProcessing() }, waitFor, tick)
	assert.Zero(t, q.Len())
}

func TestQueueThresholdBoundary(t *testing.T) {
	for _, tt := range []struct {
		score int
		want  models.ApplicationStatus
	}{
		{score: 7, want: models.StatusUnderReview},
		{score: 6, want: models.StatusRejected},
		{score: 10, want: models.StatusUnderReview},
		{score: 1, want: models.StatusRejected},
	} {
		apps := newMemoryApplications(application(1, 1, "cv.pdf"))
		eval := &funcEvaluator{fn: scoreBy(map[string]int{"cv.pdf": tt.score})}
		q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 7}, nil)

		require.NoError(t, q.EvaluateNow(context.Background(), 1))

		got := apps.get(1)
		assert.Equal(t, tt.want, got.Status, "score %d", tt.score)
		assert.Equal(t, tt.score, *got.AIScore)
	}
}

func TestQueueSingleWorker(t *testing.T) {
	apps := newMemoryApplications()
	for i := int64(1); i <= 5; i++ {
		apps.apps[i] = application(i, 1, "cv.txt")
	}

	var inFlight, maxInFlight int32
	release := make(chan struct{})
	eval := &funcEvaluator{fn: func(string, *models.Job) (*models.EvaluationResult, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&inFlight, -1)
		return &models.EvaluationResult{Score: 6, Feedback: "ok"}, nil
	}}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 5}, nil)

	var wg sync.WaitGroup
	for i := int64(1); i <= 5; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			q.Enqueue(id)
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool { return eval.callCount() == 1 }, waitFor, tick)
	assert.True(t, q.IsProcessing())
	assert.Equal(t, 4, q.Len())

	close(release)
	require.Eventually(t, func() bool { return len(apps.writeOrder()) == 5 }, waitFor, tick)
	assert.EqualValues(t, 1, atomic.LoadInt32(&maxInFlight))
}

func TestQueueMissingJob(t *testing.T) {
	apps := newMemoryApplications(application(1, 42, "cv.pdf"))
	eval := &funcEvaluator{fn: scoreBy(nil)}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 5}, nil)

	require.NoError(t, q.EvaluateNow(context.Background(), 1))

	got := apps.get(1)
	assert.Equal(t, 0, *got.AIScore)
	assert.Equal(t, FeedbackJobMissing, *got.AIFeedback)
	assert.Equal(t, models.StatusRejected, got.Status)
	require.NotNil(t, got.EvaluationError)
	assert.Contains(t, *got.EvaluationError, "job 42")
	assert.Zero(t, eval.callCount())
}

func TestQueueMissingApplication(t *testing.T) {
	core, observed := observer.New(zapcore.ErrorLevel)
	apps := newMemoryApplications()
	eval := &funcEvaluator{fn: scoreBy(nil)}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{}, zap.New(core))

	require.NoError(t, q.EvaluateNow(context.Background(), 99))

	assert.Empty(t, apps.writeOrder())
	assert.Zero(t, eval.callCount())
	require.Equal(t, 1, observed.FilterMessage("application not found").Len())
	assert.EqualValues(t, 99, observed.All()[0].ContextMap()["application_id"])
}

func TestQueueEvaluationFailure(t *testing.T) {
	apps := newMemoryApplications(application(1, 1, "cv.pdf"))
	eval := &funcEvaluator{fn: func(string, *models.Job) (*models.EvaluationResult, error) {
		return nil, errors.Join(ErrEvaluationFailed, errors.New("invalid JSON response"))
	}}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 5}, nil)

	q.Enqueue(1)
	require.Eventually(t, func() bool { return len(apps.writeOrder()) == 1 }, waitFor, tick)

	got := apps.get(1)
	assert.Equal(t, 0, *got.AIScore)
	assert.Equal(t, FeedbackGenericError, *got.AIFeedback)
	assert.Equal(t, models.StatusRejected, got.Status)
	require.NotNil(t, got.EvaluationError)
	assert.Contains(t, *got.EvaluationError, "invalid JSON response")
	assert.Equal(t, []models.ApplicationStatus{models.StatusEvaluating}, apps.statusUpdates)
}

func TestQueueRecoversFromPanic(t *testing.T) {
	apps := newMemoryApplications(application(1, 1, "cv.pdf"), application(2, 1, "ok.pdf"))
	eval := &funcEvaluator{fn: func(ref string, _ *models.Job) (*models.EvaluationResult, error) {
		if ref == "cv.pdf" {
			panic("parser exploded")
		}
		return &models.EvaluationResult{Score: 8, Feedback: "fine"}, nil
	}}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 5}, nil)

	q.Enqueue(1)
	q.Enqueue(2)
	require.Eventually(t, func() bool { return len(apps.writeOrder()) == 2 }, waitFor, tick)

	assert.Equal(t, FeedbackGenericError, *apps.get(1).AIFeedback)
	assert.Contains(t, *apps.get(1).EvaluationError, "parser exploded")
	assert.Equal(t, models.StatusUnderReview, apps.get(2).Status)
}

func TestQueueUnconfiguredClient(t *testing.T) {
	apps := newMemoryApplications(application(1, 1, "cv.pdf"))
	evaluator := NewEvaluator(nil, &stubExtractor{}, EvaluatorConfig{}, nil)
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), evaluator, QueueConfig{ScoreThreshold: 5}, nil)

	require.NoError(t, q.EvaluateNow(context.Background(), 1))

	got := apps.get(1)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, FeedbackGenericError, *got.AIFeedback)
	assert.Equal(t, ErrClientNotConfigured.Error(), *got.EvaluationError)
}

func TestQueueReevaluationOverwrites(t *testing.T) {
	apps := newMemoryApplications(application(1, 1, "cv.txt"))
	apps.apps[1].Status = models.StatusAccepted
	eval := &funcEvaluator{fn: scoreBy(map[string]int{"cv.txt": 2})}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 5}, nil)

	require.NoError(t, q.EvaluateNow(context.Background(), 1))
	assert.Equal(t, models.StatusRejected, apps.get(1).Status)

	q.Enqueue(1)
	q.Enqueue(1)
	require.Eventually(t, func() bool { return len(apps.writeOrder()) == 3 }, waitFor, tick)
	assert.Equal(t, 3, eval.callCount())
}

func TestQueueEmptyPDFStillTerminates(t *testing.T) {
	apps := newMemoryApplications(application(1, 1, "scan.pdf"))
	gen := &stubGenerator{responses: []string{`{"score": 1, "feedback": "The resume could not be read."}`}}
	evaluator := NewEvaluator(gen, &stubExtractor{text: msgPDFEmpty}, EvaluatorConfig{MaxAttempts: 1}, nil)
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), evaluator, QueueConfig{ScoreThreshold: 5}, nil)

	require.NoError(t, q.EvaluateNow(context.Background(), 1))

	assert.Contains(t, gen.lastPrompt, msgPDFEmpty)
	assert.Equal(t, models.StatusRejected, apps.get(1).Status)
	assert.Equal(t, 1, *apps.get(1).AIScore)
}

func TestQueueWriteFailureSurfaces(t *testing.T) {
	apps := newMemoryApplications(application(1, 1, "cv.txt"))
	apps.updateErr = errors.New("connection reset")
	eval := &funcEvaluator{fn: scoreBy(map[string]int{"cv.txt": 8})}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 5}, nil)

	err := q.EvaluateNow(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestQueueStartRecoversStrandedApplications(t *testing.T) {
	stranded := application(1, 1, "a.txt")
	stranded.Status = models.StatusEvaluating
	apps := newMemoryApplications(stranded, application(2, 1, "b.txt"))
	done := application(3, 1, "c.txt")
	done.Status = models.StatusUnderReview
	apps.apps[3] = done

	eval := &funcEvaluator{fn: scoreBy(map[string]int{"a.txt": 8, "b.txt": 2})}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 5}, nil)

	q.Start(context.Background())
	defer q.Stop()

	require.Eventually(t, func() bool { return len(apps.writeOrder()) == 2 }, waitFor, tick)
	assert.Equal(t, []int64{1, 2}, apps.writeOrder())
	assert.Equal(t, 2, eval.callCount())
}

func TestQueuePollerPicksUpPending(t *testing.T) {
	apps := newMemoryApplications()
	eval := &funcEvaluator{fn: scoreBy(map[string]int{"late.txt": 9})}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval,
		QueueConfig{ScoreThreshold: 5, PollInterval: 10 * time.Millisecond}, nil)

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, apps.Create(context.Background(), application(0, 1, "late.txt")))

	require.Eventually(t, func() bool { return len(apps.writeOrder()) == 1 }, waitFor, tick)
	assert.Equal(t, models.StatusUnderReview, apps.get(1).Status)
}

func TestQueueStopLeavesRemainingPending(t *testing.T) {
	apps := newMemoryApplications(application(1, 1, "a.txt"), application(2, 1, "b.txt"))
	started := make(chan struct{})
	release := make(chan struct{})
	eval := &funcEvaluator{fn: func(ref string, _ *models.Job) (*models.EvaluationResult, error) {
		if ref == "a.txt" {
			close(started)
			<-release
		}
		return &models.EvaluationResult{Score: 8, Feedback: "ok"}, nil
	}}
	q := NewEvaluationQueue(apps, newMemoryJobs(testJob()), eval, QueueConfig{ScoreThreshold: 5}, nil)

	q.Enqueue(1)
	q.Enqueue(2)
	<-started

	stopped := make(chan struct{})
	go func() {
		q.Stop()
		close(stopped)
	}()

	impl := q.(*evaluationQueue)
	require.Eventually(t, func() bool {
		impl.mu.Lock()
		defer impl.mu.Unlock()
		return impl.stopped
	}, waitFor, tick)

	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight evaluation finished")
	default:
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(waitFor):
		t.Fatal("Stop did not return")
	}

	assert.Equal(t, models.StatusUnderReview, apps.get(1).Status)
	assert.Equal(t, models.StatusPending, apps.get(2).Status)
	assert.Zero(t, q.Len())
	assert.False(t, q.IsProcessing())

	q.Enqueue(2)
	assert.Zero(t, q.Len())
}
