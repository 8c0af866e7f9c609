package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"hireny/job-board/internal/logger"
	"hireny/job-board/internal/models"
)

const (
	MinScore = 1
	MaxScore = 10

	logPreviewLimit = 300
)

// Evaluator scores a résumé against a job.
type Evaluator interface {
	EvaluateResume(ctx context.Context, resumeRef string, job *models.Job) (*models.EvaluationResult, error)
	// Ping sends a canned prompt to the backend and returns its reply.
	Ping(ctx context.Context) (string, error)
	Provider() string
	Configured() bool
}

type EvaluatorConfig struct {
	Provider    string
	Temperature float32
	MaxAttempts int
}

type evaluator struct {
	generator   TextGenerator
	extractor   Extractor
	provider    string
	temperature float32
	maxAttempts int
	log         *zap.Logger
}

// NewEvaluator builds the AI client. A nil generator means no credential was
// configured; every evaluation then fails with ErrClientNotConfigured.
func NewEvaluator(generator TextGenerator, extractor Extractor, cfg EvaluatorConfig, log *zap.Logger) Evaluator {
	e := &evaluator{
		generator:   generator,
		extractor:   extractor,
		provider:    cfg.Provider,
		temperature: cfg.Temperature,
		maxAttempts: cfg.MaxAttempts,
		log:         logger.OrNop(log),
	}
	if generator != nil {
		e.provider = generator.Provider()
		e.log = logger.WithAI(e.log, generator.Provider(), generator.Model())
	}
	return e
}

func (e *evaluator) Provider() string { return e.provider }

func (e *evaluator) Configured() bool { return e.generator != nil }

func (e *evaluator) EvaluateResume(ctx context.Context, resumeRef string, job *models.Job) (*models.EvaluationResult, error) {
	if e.generator == nil {
		return nil, ErrClientNotConfigured
	}

	resumeText := e.extractor.Extract(resumeRef)
	prompt := BuildEvaluationPrompt(job, resumeText)

	e.log.Debug("sending evaluation prompt",
		zap.Int64(logger.FieldJobID, job.ID),
		zap.Int("prompt_length", len(prompt)),
		zap.String("resume_preview", logger.TruncateForLog(resumeText, logPreviewLimit)))

	response, err := generateWithRetry(ctx, e.generator, e.log, prompt, e.maxAttempts,
		WithJSONResponse(), WithTemperature(e.temperature))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluationFailed, err)
	}

	e.log.Debug("evaluation response received",
		zap.String("response_preview", logger.TruncateForLog(response, logPreviewLimit)))

	result, err := ParseEvaluation(response)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *evaluator) Ping(ctx context.Context) (string, error) {
	if e.generator == nil {
		return "", ErrClientNotConfigured
	}
	return e.generator.Generate(ctx, DiagnosticPrompt(e.provider))
}

type rawEvaluation struct {
	Score    json.RawMessage `json:"score"`
	Feedback *string         `json:"feedback"`
}

// ParseEvaluation decodes a model reply. The score must be a JSON number and
// the feedback a non-empty string; anything else fails with ErrEvaluationFailed.
func ParseEvaluation(response string) (*models.EvaluationResult, error) {
	payload := extractJSON(response)

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON response: %v", ErrEvaluationFailed, err)
	}

	if len(raw.Score) == 0 || string(raw.Score) == "null" {
		return nil, fmt.Errorf("%w: response has no score", ErrEvaluationFailed)
	}
	var score float64
	if err := json.Unmarshal(raw.Score, &score); err != nil {
		return nil, fmt.Errorf("%w: score %s is not a number", ErrEvaluationFailed, raw.Score)
	}

	if raw.Feedback == nil || strings.TrimSpace(*raw.Feedback) == "" {
		return nil, fmt.Errorf("%w: response has no feedback", ErrEvaluationFailed)
	}

	return &models.EvaluationResult{
		Score:    ClampScore(score),
		Feedback: strings.TrimSpace(*raw.Feedback),
	}, nil
}

// ClampScore rounds to the nearest integer and forces the result into
// [MinScore, MaxScore]. NaN maps to MinScore.
func ClampScore(score float64) int {
	if math.IsNaN(score) {
		return MinScore
	}
	rounded := math.Round(score)
	if rounded < MinScore {
		return MinScore
	}
	if rounded > MaxScore {
		return MaxScore
	}
	return int(rounded)
}

// extractJSON strips markdown fences and surrounding prose from a model reply.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}
