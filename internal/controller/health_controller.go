package controller

import (
	"aura-support-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

const (
	ServiceName    = "AURA Backend"
	ServiceVersion = "1.0.0"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct{}

func NewHealthController() IHealthController {
	return &healthController{}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:  "ok",
		Service: ServiceName,
		Version: ServiceVersion,
	})
}
