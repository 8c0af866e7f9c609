package handlers

import (
	"github.com/gofiber/fiber/v2"
)

var endpoints = []string{
	"GET /health",
	"GET /api/test/:provider",
	"POST /api/queue/evaluate/:id",
	"GET /api/queue/stats",
	"GET /api/jobs",
	"GET /api/jobs/:id",
	"POST /api/applications",
	"GET /api/applications?applicant_id=",
	"GET /api/applications/:id",
	"GET /api/hr/jobs",
	"POST /api/hr/jobs",
	"PUT /api/hr/jobs/:id",
	"DELETE /api/hr/jobs/:id",
	"GET /api/hr/applications",
	"GET /api/hr/applications/:id",
	"PUT /api/hr/applications/:id/status",
	"GET /api/hr/stats",
}

type Routes struct {
	System       *SystemHandler
	Queue        *QueueHandler
	Jobs         *JobHandler
	Applications *ApplicationHandler
	HR           *HRHandler
	HRAPIKey     string
}

func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/", r.System.HandleRoot)
	app.Get("/health", r.System.HandleHealth)

	api := app.Group("/api")
	api.Get("/test/:provider", r.System.HandleDiagnostic)

	api.Post("/queue/evaluate/:id", r.Queue.HandleEvaluate)
	api.Get("/queue/stats", r.Queue.HandleStats)

	api.Get("/jobs", r.Jobs.HandleListActive)
	api.Get("/jobs/:id", r.Jobs.HandleGet)

	api.Post("/applications", r.Applications.HandleSubmit)
	api.Get("/applications", r.Applications.HandleListMine)
	api.Get("/applications/:id", r.Applications.HandleGet)

	hr := api.Group("/hr", RequireHRKey(r.HRAPIKey))
	hr.Get("/jobs", r.Jobs.HandleListAll)
	hr.Post("/jobs", r.Jobs.HandleCreate)
	hr.Put("/jobs/:id", r.Jobs.HandleUpdate)
	hr.Delete("/jobs/:id", r.Jobs.HandleDelete)
	hr.Get("/applications", r.HR.HandleListApplications)
	hr.Get("/applications/:id", r.HR.HandleGetApplication)
	hr.Put("/applications/:id/status", r.HR.HandleUpdateStatus)
	hr.Get("/stats", r.HR.HandleStats)
}

// ErrorHandler renders unhandled errors as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
