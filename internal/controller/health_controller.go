package controller

import (
	"qr-health-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRootRoutes(app *fiber.App)
	Check(ctx *fiber.Ctx) error
}

type healthController struct {
	healthService service.IHealthService
}

func NewHealthController(healthService service.IHealthService) IHealthController {
	return &healthController{
		healthService: healthService,
	}
}

func (c *healthController) RegisterRootRoutes(app *fiber.App) {
	app.Get("/health", c.Check)
}

// Check answers HTTP 200 even when dependencies are down; the body carries
// the degraded status so probes keep the process alive during an outage.
func (c *healthController) Check(ctx *fiber.Ctx) error {
	return ctx.JSON(c.healthService.Check(ctx.Context()))
}
