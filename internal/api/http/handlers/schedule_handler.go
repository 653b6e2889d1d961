package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shift-scheduler/internal/api/dto"
	"github.com/spec-kit/shift-scheduler/internal/service"
)

// ScheduleHandler exposes schedule generation and retrieval.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: scheduleService}
}

// Generate POST /schedules/generate.
func (h *ScheduleHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	doc, err := h.schedules.Generate(c.UserContext(), req.Year, time.Month(req.Month))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "schedule created",
		"data":    dto.NewScheduleResponse(doc),
	})
}

// Get GET /schedules/:year/:month.
func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	year, err := c.ParamsInt("year")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid year")
	}
	month, err := c.ParamsInt("month")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid month")
	}
	doc, err := h.schedules.GetSchedule(c.UserContext(), year, time.Month(month))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewScheduleResponse(doc)})
}
