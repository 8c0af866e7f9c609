package handlers

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hireny/job-board/internal/logger"
	"hireny/job-board/internal/models"
	"hireny/job-board/internal/repositories"
	"hireny/job-board/internal/services"
)

type ApplicationHandler struct {
	appRepo        repositories.ApplicationRepository
	jobRepo        repositories.JobRepository
	storageService services.StorageService
	dispatcher     Dispatcher
	maxFileSize    int64
	log            *zap.Logger
}

func NewApplicationHandler(
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	storageService services.StorageService,
	dispatcher Dispatcher,
	maxFileSize int64,
	log *zap.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		appRepo:        appRepo,
		jobRepo:        jobRepo,
		storageService: storageService,
		dispatcher:     dispatcher,
		maxFileSize:    maxFileSize,
		log:            logger.OrNop(log),
	}
}

// HandleSubmit handles POST /api/applications. The résumé arrives either as
// the multipart "resume" file or as a "resume_url" pointing at hosted storage.
func (h *ApplicationHandler) HandleSubmit(c *fiber.Ctx) error {
	jobID, err := strconv.ParseInt(strings.TrimSpace(c.FormValue("job_id")), 10, 64)
	if err != nil || jobID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID",
		})
	}

	fullName := strings.TrimSpace(c.FormValue("full_name"))
	email := strings.TrimSpace(c.FormValue("email"))
	if fullName == "" || email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "full_name and email are required",
		})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email address",
		})
	}

	job, err := h.jobRepo.FindByID(c.UserContext(), jobID)
	if err != nil {
		return jobLookupError(c, err)
	}
	if job.Status != models.JobStatusActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "This job is no longer accepting applications",
		})
	}

	app := models.Application{
		JobID:    jobID,
		FullName: fullName,
		Email:    email,
		Phone:    strings.TrimSpace(c.FormValue("phone")),
		Status:   models.StatusPending,
	}
	if applicant := strings.TrimSpace(c.FormValue("applicant_id")); applicant != "" {
		app.ApplicantID = &applicant
	}

	var savedFile string
	if resume, err := c.FormFile("resume"); err == nil {
		if resume.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
			})
		}

		filename, filePath, err := h.storageService.SaveResume(resume)
		if err != nil {
			if errors.Is(err, services.ErrUnsupportedFileType) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Resume must be a PDF, DOCX, DOC or TXT file",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save resume: %v", err),
			})
		}
		savedFile = filename
		app.ResumePath = filePath
	} else {
		resumeURL := strings.TrimSpace(c.FormValue("resume_url"))
		if resumeURL == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "A resume file or resume_url is required",
			})
		}
		if !services.IsRemote(resumeURL) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "resume_url must be an http(s) URL",
			})
		}
		app.ResumePath = resumeURL
	}

	if err := h.appRepo.Create(c.UserContext(), &app); err != nil {
		if savedFile != "" {
			// Drop the orphaned upload
			if delErr := h.storageService.DeleteFile(savedFile); delErr != nil {
				h.log.Warn("failed to remove orphaned resume", zap.String("file", savedFile), zap.Error(delErr))
			}
		}
		h.log.Error("failed to create application", zap.Int64(logger.FieldJobID, jobID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save application",
		})
	}

	message := "Application submitted successfully"
	if err := h.dispatcher.Dispatch(c.UserContext(), app.ID); err != nil {
		// The row stays pending and is picked up again on the next start.
		h.log.Error("failed to trigger evaluation", zap.Int64(logger.FieldApplicationID, app.ID), zap.Error(err))
		message = "Application submitted; evaluation will be retried"
	}

	// Inline dispatch has already evaluated the application.
	status := app.Status
	if stored, err := h.appRepo.FindByID(c.UserContext(), app.ID); err == nil {
		status = stored.Status
	}

	return c.Status(fiber.StatusCreated).JSON(models.SubmitApplicationResponse{
		ID:      app.ID,
		Status:  status,
		Message: message,
	})
}

// HandleGet handles GET /api/applications/:id. Only the applicant-facing
// fields are returned; HR reads the full record under /api/hr.
func (h *ApplicationHandler) HandleGet(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID",
		})
	}

	app, err := h.appRepo.FindWithJob(c.UserContext(), int64(id))
	if err != nil {
		return applicationLookupError(c, err)
	}

	return c.JSON(models.NewApplicantView(app))
}

// HandleListMine handles GET /api/applications?applicant_id=
func (h *ApplicationHandler) HandleListMine(c *fiber.Ctx) error {
	applicantID := strings.TrimSpace(c.Query("applicant_id"))
	if applicantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "applicant_id is required",
		})
	}

	apps, err := h.appRepo.FindAll(c.UserContext(), repositories.ApplicationFilter{ApplicantID: applicantID})
	if err != nil {
		return err
	}

	views := make([]models.ApplicantView, 0, len(apps))
	for i := range apps {
		views = append(views, models.NewApplicantView(&apps[i]))
	}

	return c.JSON(views)
}
