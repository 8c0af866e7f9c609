package services

import "errors"

var (
	// ErrClientNotConfigured means no AI backend credential was present at startup.
	ErrClientNotConfigured = errors.New("ai client not configured")
	// ErrEvaluationFailed wraps backend, parse and schema failures of one evaluation.
	ErrEvaluationFailed = errors.New("ai evaluation failed")
)
