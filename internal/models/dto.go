package models

import (
	"time"
)

type CreateJobRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Location     string `json:"location"`
	SalaryRange  string `json:"salary_range"`
	CreatedBy    string `json:"created_by"`
}

// UpdateJobRequest carries a partial update; nil fields are left untouched.
type UpdateJobRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Requirements *string    `json:"requirements"`
	Location     *string    `json:"location"`
	SalaryRange  *string    `json:"salary_range"`
	Status       *JobStatus `json:"status"`
}

type UpdateStatusRequest struct {
	Status ApplicationStatus `json:"status"`
}

type SubmitApplicationResponse struct {
	ID      int64             `json:"id"`
	Status  ApplicationStatus `json:"status"`
	Message string            `json:"message"`
}

type QueueStats struct {
	QueueSize  int  `json:"queue_size"`
	Processing bool `json:"processing"`
}

type ApplicationStats struct {
	Total    int64                       `json:"total"`
	ByStatus map[ApplicationStatus]int64 `json:"by_status"`
}

// ApplicantView is what an applicant may see of an application. Contact
// details, the résumé location and internal error text are left out.
type ApplicantView struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"job_id"`
	JobTitle    string            `json:"job_title,omitempty"`
	Status      ApplicationStatus `json:"status"`
	AIScore     *int              `json:"ai_score"`
	AIFeedback  *string           `json:"ai_feedback"`
	CreatedAt   time.Time         `json:"created_at"`
	EvaluatedAt *time.Time        `json:"evaluated_at,omitempty"`
}

func NewApplicantView(app *Application) ApplicantView {
	view := ApplicantView{
		ID:          app.ID,
		JobID:       app.JobID,
		Status:      app.Status,
		AIScore:     app.AIScore,
		AIFeedback:  app.AIFeedback,
		CreatedAt:   app.CreatedAt,
		EvaluatedAt: app.EvaluatedAt,
	}
	if app.Job != nil {
		view.JobTitle = app.Job.Title
	}
	return view
}
