package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hireny/job-board/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id int64) (*models.Job, error)
	FindAll(ctx context.Context, activeOnly bool) ([]models.Job, error)
	Update(ctx context.Context, id int64, req *models.UpdateJobRequest) (*models.Job, error)
	Count(ctx context.Context) (int64, error)
	// Delete removes a job that no application references.
	Delete(ctx context.Context, id int64) error
}

// ErrJobHasApplications is returned by Delete while applications still point
// at the job. Closing the job is the way to retire it.
var ErrJobHasApplications = errors.New("job has applications")

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Create implements JobRepository.
func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.Status == "" {
		job.Status = models.JobStatusActive
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// FindByID implements JobRepository.
func (r *jobRepository) FindByID(ctx context.Context, id int64) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %d: %w", id, ErrRecordNotFound)
		}

		return nil, fmt.Errorf("failed to find job: %w", err)
	}

	return &job, nil
}

// FindAll implements JobRepository. Newest postings come first.
func (r *jobRepository) FindAll(ctx context.Context, activeOnly bool) ([]models.Job, error) {
	var jobs []models.Job
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if activeOnly {
		q = q.Where("status = ?", models.JobStatusActive)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}

	return jobs, nil
}

// Update implements JobRepository.
func (r *jobRepository) Update(ctx context.Context, id int64, req *models.UpdateJobRequest) (*models.Job, error) {
	updates := map[string]interface{}{}

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Requirements != nil {
		updates["requirements"] = *req.Requirements
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.SalaryRange != nil {
		updates["salary_range"] = *req.SalaryRange
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Job{}).
			Where("id = ?", id).
			Updates(updates)

		if result.Error != nil {
			return nil, fmt.Errorf("failed to update job: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			return nil, fmt.Errorf("job %d: %w", id, ErrRecordNotFound)
		}
	}

	return r.FindByID(ctx, id)
}

// Count implements JobRepository.
func (r *jobRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Job{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

// Delete implements JobRepository.
func (r *jobRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Application{}).Where("job_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count job applications: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("job %d: %w", id, ErrJobHasApplications)
		}

		result := tx.Where("id = ?", id).Delete(&models.Job{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete job: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("job %d: %w", id, ErrRecordNotFound)
		}
		return nil
	})
}
