package handler

import (
	"jobpulse/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	clientCount func() int
}

func NewHealthHandler(clientCount func() int) *HealthHandler {
	return &HealthHandler{clientCount: clientCount}
}

func (h *HealthHandler) HandleHealth(c fiber.Ctx) error {
	clients := 0
	if h != nil && h.clientCount != nil {
		clients = h.clientCount()
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{
		"connected_clients": clients,
	})
}
