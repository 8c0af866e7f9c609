package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hireny/job-board/internal/logger"
	"hireny/job-board/internal/services"
)

const (
	serviceName    = "Job Board API"
	serviceVersion = "1.0.0"
)

type SystemHandler struct {
	evaluator services.Evaluator
	log       *zap.Logger
}

func NewSystemHandler(evaluator services.Evaluator, log *zap.Logger) *SystemHandler {
	return &SystemHandler{
		evaluator: evaluator,
		log:       logger.OrNop(log),
	}
}

// HandleRoot handles GET /
func (h *SystemHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   serviceName,
		"version":   serviceVersion,
		"endpoints": endpoints,
	})
}

// HandleHealth handles GET /health
func (h *SystemHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":        "OK",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"ai_provider":   h.evaluator.Provider(),
		"ai_configured": h.evaluator.Configured(),
	})
}

// HandleDiagnostic handles GET /api/test/:provider. It sends a canned
// prompt to the active backend and echoes the reply.
func (h *SystemHandler) HandleDiagnostic(c *fiber.Ctx) error {
	provider := strings.ToLower(c.Params("provider"))
	if provider != h.evaluator.Provider() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Unknown AI provider",
		})
	}

	reply, err := h.evaluator.Ping(c.UserContext())
	if err != nil {
		h.log.Warn("diagnostic prompt failed", zap.String(logger.FieldProvider, provider), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"response": reply,
	})
}
