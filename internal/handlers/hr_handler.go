package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hireny/job-board/internal/logger"
	"hireny/job-board/internal/models"
	"hireny/job-board/internal/repositories"
)

// HRHandler serves the review side of the board. Status changes made here
// go straight to the store and never touch the evaluation queue.
type HRHandler struct {
	appRepo repositories.ApplicationRepository
	log     *zap.Logger
}

func NewHRHandler(appRepo repositories.ApplicationRepository, log *zap.Logger) *HRHandler {
	return &HRHandler{
		appRepo: appRepo,
		log:     logger.OrNop(log),
	}
}

// HandleListApplications handles GET /api/hr/applications?status=&job_id=
func (h *HRHandler) HandleListApplications(c *fiber.Ctx) error {
	var filter repositories.ApplicationFilter

	if status := c.Query("status"); status != "" {
		filter.Status = models.ApplicationStatus(status)
		if !filter.Status.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid status filter",
			})
		}
	}
	if raw := c.Query("job_id"); raw != "" {
		jobID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || jobID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid job ID",
			})
		}
		filter.JobID = jobID
	}

	apps, err := h.appRepo.FindAll(c.UserContext(), filter)
	if err != nil {
		return err
	}
	if apps == nil {
		apps = []models.Application{}
	}

	return c.JSON(apps)
}

// HandleGetApplication handles GET /api/hr/applications/:id
func (h *HRHandler) HandleGetApplication(c *fiber.Ctx) error {
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

	return c.JSON(app)
}

// HandleUpdateStatus handles PUT /api/hr/applications/:id/status
func (h *HRHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID",
		})
	}

	var req models.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !req.Status.Reviewable() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid status",
			"allowed": models.ReviewStatuses,
		})
	}

	if err := h.appRepo.UpdateStatus(c.UserContext(), int64(id), req.Status); err != nil {
		return applicationLookupError(c, err)
	}
	h.log.Info("application status set by reviewer",
		zap.Int(logger.FieldApplicationID, id),
		zap.String("status", string(req.Status)))

	app, err := h.appRepo.FindByID(c.UserContext(), int64(id))
	if err != nil {
		return applicationLookupError(c, err)
	}

	return c.JSON(app)
}

// HandleStats handles GET /api/hr/stats
func (h *HRHandler) HandleStats(c *fiber.Ctx) error {
	counts, err := h.appRepo.CountByStatus(c.UserContext())
	if err != nil {
		return err
	}

	stats := models.ApplicationStats{ByStatus: make(map[models.ApplicationStatus]int64)}
	for _, status := range []models.ApplicationStatus{
		models.StatusPending,
		models.StatusEvaluating,
		models.StatusUnderReview,
		models.StatusAccepted,
		models.StatusRejected,
	} {
		stats.ByStatus[status] = counts[status]
		stats.Total += counts[status]
	}

	return c.JSON(stats)
}

func applicationLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Application not found",
		})
	}
	return err
}
