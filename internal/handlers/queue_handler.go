package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hireny/job-board/internal/logger"
	"hireny/job-board/internal/models"
	"hireny/job-board/internal/services"
)

// Dispatcher hands an application to the evaluation pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, applicationID int64) error
}

type QueueHandler struct {
	queue  services.EvaluationQueue
	inline bool
	log    *zap.Logger
}

// NewQueueHandler creates the trigger handler. With inline set, evaluations
// run inside the request instead of on the background worker.
func NewQueueHandler(queue services.EvaluationQueue, inline bool, log *zap.Logger) *QueueHandler {
	return &QueueHandler{
		queue:  queue,
		inline: inline,
		log:    logger.OrNop(log),
	}
}

func (h *QueueHandler) Dispatch(ctx context.Context, applicationID int64) error {
	if h.inline {
		return h.queue.EvaluateNow(ctx, applicationID)
	}
	h.queue.Enqueue(applicationID)
	return nil
}

// HandleEvaluate handles POST /api/queue/evaluate/:id
func (h *QueueHandler) HandleEvaluate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID",
		})
	}

	if err := h.Dispatch(c.UserContext(), int64(id)); err != nil {
		h.log.Error("failed to trigger evaluation", zap.Int(logger.FieldApplicationID, id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue evaluation",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Application %d evaluation triggered", id),
	})
}

// HandleStats handles GET /api/queue/stats
func (h *QueueHandler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(models.QueueStats{
		QueueSize:  h.queue.Len(),
		Processing: h.queue.IsProcessing(),
	})
}
