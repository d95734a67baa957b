package handler

import (
	"fmt"
	"strings"

	"jobpulse/internal/delivery/http/middleware"
	"jobpulse/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type AnalyticsHandler struct {
	engine Engine
}

func NewAnalyticsHandler(engine Engine) *AnalyticsHandler {
	return &AnalyticsHandler{engine: engine}
}

// HandleGetAnalytics serves GET /analytics/:userId. Derived from recorded
// telemetry when available, synthesized otherwise; never empty.
func (h *AnalyticsHandler) HandleGetAnalytics(c fiber.Ctx) error {
	userID := strings.TrimSpace(c.Params("userId"))
	if userID == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "empty user id", fmt.Errorf("missing user id"))
	}

	snap := h.engine.Analytics(c.Context(), userID)
	return response.Success(c, fiber.StatusOK, response.MessageOK, snap)
}
