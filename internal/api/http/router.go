package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shift-scheduler/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Schedules *handlers.ScheduleHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/schedules/generate", cfg.Schedules.Generate)
	app.Get("/schedules/:year/:month", cfg.Schedules.Get)
}
