package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hireny/job-board/internal/models"
	"hireny/job-board/internal/repositories"
)

type JobHandler struct {
	jobRepo repositories.JobRepository
}

func NewJobHandler(jobRepo repositories.JobRepository) *JobHandler {
	return &JobHandler{
		jobRepo: jobRepo,
	}
}

// HandleListActive handles GET /api/jobs
func (h *JobHandler) HandleListActive(c *fiber.Ctx) error {
	return h.list(c, true)
}

// HandleListAll handles GET /api/hr/jobs
func (h *JobHandler) HandleListAll(c *fiber.Ctx) error {
	return h.list(c, false)
}

func (h *JobHandler) list(c *fiber.Ctx, activeOnly bool) error {
	jobs, err := h.jobRepo.FindAll(c.UserContext(), activeOnly)
	if err != nil {
		return err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	return c.JSON(jobs)
}

// HandleGet handles GET /api/jobs/:id
func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID",
		})
	}

	job, err := h.jobRepo.FindByID(c.UserContext(), int64(id))
	if err != nil {
		return jobLookupError(c, err)
	}

	return c.JSON(job)
}

// HandleCreate handles POST /api/hr/jobs
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title is required",
		})
	}

	job := models.Job{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		SalaryRange:  req.SalaryRange,
		CreatedBy:    req.CreatedBy,
		Status:       models.JobStatusActive,
	}
	if err := h.jobRepo.Create(c.UserContext(), &job); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleUpdate handles PUT /api/hr/jobs/:id. Closing a posting is an update
// with status "closed".
func (h *JobHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID",
		})
	}

	var req models.UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Status != nil && !req.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be active or closed",
		})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title cannot be empty",
		})
	}

	job, err := h.jobRepo.Update(c.UserContext(), int64(id), &req)
	if err != nil {
		return jobLookupError(c, err)
	}

	return c.JSON(job)
}

// HandleDelete handles DELETE /api/hr/jobs/:id. Jobs with applications are
// kept; HR closes them instead.
func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID",
		})
	}

	if err := h.jobRepo.Delete(c.UserContext(), int64(id)); err != nil {
		if errors.Is(err, repositories.ErrJobHasApplications) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Job has applications; close it instead",
			})
		}
		return jobLookupError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Job %d deleted", id),
	})
}

func jobLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job not found",
		})
	}
	return err
}
