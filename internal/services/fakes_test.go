package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hireny/job-board/internal/models"
	"hireny/job-board/internal/repositories"
)

type stubGenerator struct {
	mu         sync.Mutex
	responses  []string
	errs       []error
	calls      int
	lastPrompt string
	lastOpts   generateOptions
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, opts ...GenerateOption) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	s.lastPrompt = prompt
	s.lastOpts = applyOptions(opts)

	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func (s *stubGenerator) Provider() string { return "openrouter" }

func (s *stubGenerator) Model() string { return "test-model" }

type stubExtractor struct {
	text       string
	lastSource string
}

func (s *stubExtractor) Extract(source string) string {
	s.lastSource = source
	return s.text
}

func (s *stubExtractor) ExtractBytes(data []byte, _ string) string {
	return string(data)
}

// memoryApplications is an in-memory ApplicationRepository that records every
// terminal write in order.
type memoryApplications struct {
	mu            sync.Mutex
	apps          map[int64]*models.Application
	writes        []int64
	statusUpdates []models.ApplicationStatus
	updateErr     error
}

func newMemoryApplications(apps ...*models.Application) *memoryApplications {
	m := &memoryApplications{apps: make(map[int64]*models.Application)}
	for _, a := range apps {
		if a.Status == "" {
			a.Status = models.StatusPending
		}
		m.apps[a.ID] = a
	}
	return m
}

func (m *memoryApplications) get(id int64) models.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.apps[id]
}

func (m *memoryApplications) writeOrder() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.writes...)
}

func (m *memoryApplications) Create(_ context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app.ID = int64(len(m.apps) + 1)
	if app.Status == "" {
		app.Status = models.StatusPending
	}
	m.apps[app.ID] = app
	return nil
}

func (m *memoryApplications) FindByID(_ context.Context, id int64) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, fmt.Errorf("application %d: %w", id, repositories.ErrRecordNotFound)
	}
	cp := *app
	return &cp, nil
}

func (m *memoryApplications) FindWithJob(ctx context.Context, id int64) (*models.Application, error) {
	return m.FindByID(ctx, id)
}

func (m *memoryApplications) FindAll(_ context.Context, _ repositories.ApplicationFilter) ([]models.Application, error) {
	return nil, nil
}

func (m *memoryApplications) FindByStatus(_ context.Context, status models.ApplicationStatus, limit int) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Application
	for _, app := range m.apps {
		if app.Status == status {
			out = append(out, *app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryApplications) UpdateStatus(_ context.Context, id int64, status models.ApplicationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return fmt.Errorf("application %d: %w", id, repositories.ErrRecordNotFound)
	}
	app.Status = status
	m.statusUpdates = append(m.statusUpdates, status)
	return nil
}

func (m *memoryApplications) UpdateEvaluation(_ context.Context, id int64, data *repositories.EvaluationUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	app, ok := m.apps[id]
	if !ok {
		return fmt.Errorf("application %d: %w", id, repositories.ErrRecordNotFound)
	}
	score := data.Score
	feedback := data.Feedback
	app.AIScore = &score
	app.AIFeedback = &feedback
	app.Status = data.Status
	app.EvaluationError = data.Error
	m.writes = append(m.writes, id)
	return nil
}

func (m *memoryApplications) CountByStatus(_ context.Context) (map[models.ApplicationStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.ApplicationStatus]int64)
	for _, app := range m.apps {
		counts[app.Status]++
	}
	return counts, nil
}

type memoryJobs struct {
	jobs map[int64]*models.Job
}

func newMemoryJobs(jobs ...*models.Job) *memoryJobs {
	m := &memoryJobs{jobs: make(map[int64]*models.Job)}
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return m
}

func (m *memoryJobs) Create(_ context.Context, job *models.Job) error {
	job.ID = int64(len(m.jobs) + 1)
	m.jobs[job.ID] = job
	return nil
}

func (m *memoryJobs) FindByID(_ context.Context, id int64) (*models.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %d: %w", id, repositories.ErrRecordNotFound)
	}
	cp := *job
	return &cp, nil
}

func (m *memoryJobs) FindAll(_ context.Context, _ bool) ([]models.Job, error) { return nil, nil }

func (m *memoryJobs) Update(ctx context.Context, id int64, _ *models.UpdateJobRequest) (*models.Job, error) {
	return m.FindByID(ctx, id)
}

func (m *memoryJobs) Count(_ context.Context) (int64, error) { return int64(len(m.jobs)), nil }

// funcEvaluator adapts a function to Evaluator.
type funcEvaluator struct {
	mu    sync.Mutex
	calls []string
	fn    func(resumeRef string, job *models.Job) (*models.EvaluationResult, error)
}

func (f *funcEvaluator) EvaluateResume(_ context.Context, resumeRef string, job *models.Job) (*models.EvaluationResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, resumeRef)
	f.mu.Unlock()
	return f.fn(resumeRef, job)
}

func (f *funcEvaluator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *funcEvaluator) Ping(context.Context) (string, error) { return "pong", nil }

func (f *funcEvaluator) Provider() string { return "openrouter" }

func (f *funcEvaluator) Configured() bool { return true }
