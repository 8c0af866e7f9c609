package models

import (
	"time"
)

type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

// Job is a posting applicants apply to. Requirements holds one requirement
// per line.
type Job struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Requirements string    `gorm:"type:text" json:"requirements"`
	Location     string    `gorm:"type:text" json:"location"`
	SalaryRange  string    `gorm:"type:text" json:"salary_range,omitempty"`
	Status       JobStatus `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	CreatedBy    string    `gorm:"type:text" json:"created_by,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Job) TableName() string {
	return "jobs"
}

func (s JobStatus) Valid() bool {
	return s == JobStatusActive || s == JobStatusClosed
}
