package models

import (
	"time"
)

type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusEvaluating  ApplicationStatus = "evaluating"
	StatusRejected    ApplicationStatus = "rejected"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusAccepted    ApplicationStatus = "accepted"
)

// Application is one candidate's submission to a Job.
type Application struct {
	ID              int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID           int64             `gorm:"not null;index" json:"job_id"`
	ApplicantID     *string           `gorm:"type:text" json:"applicant_id,omitempty"`
	FullName        string            `gorm:"type:text;not null" json:"full_name"`
	Email           string            `gorm:"type:text;not null" json:"email"`
	Phone           string            `gorm:"type:text" json:"phone,omitempty"`
	ResumePath      string            `gorm:"type:text;not null" json:"resume_path"`
	AIScore         *int              `gorm:"column:ai_score" json:"ai_score"`
	AIFeedback      *string           `gorm:"column:ai_feedback;type:text" json:"ai_feedback"`
	EvaluationError *string           `gorm:"type:text" json:"evaluation_error,omitempty"`
	Status          ApplicationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	EvaluatedAt     *time.Time        `json:"evaluated_at,omitempty"`

	Job *Job `gorm:"foreignKey:JobID" json:"job,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// ReviewStatuses are the statuses HR may set directly.
var ReviewStatuses = []ApplicationStatus{StatusAccepted, StatusRejected, StatusUnderReview}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusEvaluating, StatusRejected, StatusUnderReview, StatusAccepted:
		return true
	}
	return false
}

func (s ApplicationStatus) Reviewable() bool {
	for _, r := range ReviewStatuses {
		if s == r {
			return true
		}
	}
	return false
}

// EvaluationResult is the parsed model verdict. It is never persisted on its own.
type EvaluationResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}
