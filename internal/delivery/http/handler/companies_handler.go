package handler

import (
	"fmt"
	"net/url"
	"strings"

	"jobpulse/internal/delivery/http/middleware"
	"jobpulse/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type CompaniesHandler struct {
	engine Engine
}

func NewCompaniesHandler(engine Engine) *CompaniesHandler {
	return &CompaniesHandler{engine: engine}
}

// HandleGetCompany serves GET /companies/:name. The response is always a
// concrete record; when no upstream is configured it is synthesized.
func (h *CompaniesHandler) HandleGetCompany(c fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		name = c.Params("name")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "empty company name", fmt.Errorf("missing name"))
	}

	rec := h.engine.CompanyData(c.Context(), name)
	return response.Success(c, fiber.StatusOK, response.MessageOK, rec)
}
