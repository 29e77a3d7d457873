package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/worker"
)

// EscalationRunner runs one monitor sweep on demand.
type EscalationRunner interface {
	RunOnce(ctx context.Context) worker.TickReport
}

// AdminHandler exposes operational endpoints for administrators.
type AdminHandler struct {
	monitor EscalationRunner
}

// NewAdminHandler constructs handler.
func NewAdminHandler(monitor EscalationRunner) *AdminHandler {
	return &AdminHandler{monitor: monitor}
}

// RunEscalations POST /admin/escalations/run.
func (h *AdminHandler) RunEscalations(c *fiber.Ctx) error {
	report := h.monitor.RunOnce(c.UserContext())
	return c.JSON(fiber.Map{"data": report})
}
