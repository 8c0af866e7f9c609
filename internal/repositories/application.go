package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hireny/job-board/internal/models"
)

// ErrRecordNotFound is returned (wrapped) when the addressed row does not exist.
var ErrRecordNotFound = errors.New("record not found")

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id int64) (*models.Application, error)
	FindWithJob(ctx context.Context, id int64) (*models.Application, error)
	FindAll(ctx context.Context, filter ApplicationFilter) ([]models.Application, error)
	FindByStatus(ctx context.Context, status models.ApplicationStatus, limit int) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
	UpdateEvaluation(ctx context.Context, id int64, data *EvaluationUpdate) error
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error)
}

type ApplicationFilter struct {
	Status      models.ApplicationStatus
	JobID       int64
	ApplicantID string
}

// EvaluationUpdate is the terminal write of one evaluation. Error is nil on
// success and carries the failure reason otherwise.
type EvaluationUpdate struct {
	Score    int
	Feedback string
	Status   models.ApplicationStatus
	Error    *string
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.Status == "" {
		app.Status = models.StatusPending
	}
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *applicationRepository) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	return r.find(r.db.WithContext(ctx), id)
}

func (r *applicationRepository) FindWithJob(ctx context.Context, id int64) (*models.Application, error) {
	return r.find(r.db.WithContext(ctx).Preload("Job"), id)
}

func (r *applicationRepository) find(q *gorm.DB, id int64) (*models.Application, error) {
	var app models.Application
	if err := q.Where("id = ?", id).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &app, nil
}

func (r *applicationRepository) FindAll(ctx context.Context, filter ApplicationFilter) ([]models.Application, error) {
	var apps []models.Application
	q := r.db.WithContext(ctx).Preload("Job").Order("created_at DESC").Order("id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.JobID != 0 {
		q = q.Where("job_id = ?", filter.JobID)
	}
	if filter.ApplicantID != "" {
		q = q.Where("applicant_id = ?", filter.ApplicantID)
	}
	if err := q.Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to find applications: %w", err)
	}
	return apps, nil
}

// FindByStatus returns the oldest applications in the given status first.
func (r *applicationRepository) FindByStatus(ctx context.Context, status models.ApplicationStatus, limit int) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&apps).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find %s applications: %w", status, err)
	}

	return apps, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("application %d: %w", id, ErrRecordNotFound)
	}

	return nil
}

func (r *applicationRepository) UpdateEvaluation(ctx context.Context, id int64, data *EvaluationUpdate) error {
	updates := map[string]interface{}{
		"ai_score":         data.Score,
		"ai_feedback":      data.Feedback,
		"status":           data.Status,
		"evaluation_error": data.Error,
		"evaluated_at":     time.Now(),
	}

	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update evaluation: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("application %d: %w", id, ErrRecordNotFound)
	}

	return nil
}

func (r *applicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	counts := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
