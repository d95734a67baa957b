package handler

import (
	"context"
	"fmt"
	"strings"

	"jobpulse/internal/delivery/http/middleware"
	"jobpulse/internal/domain"
	"jobpulse/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// Engine is the aggregation surface the HTTP handlers consume.
type Engine interface {
	SourceJobs(ctx context.Context, tag domain.Source, req domain.SearchRequest) []domain.JobRecord
	CompanyData(ctx context.Context, name string) domain.CompanyRecord
	Analytics(ctx context.Context, userID string) domain.AnalyticsSnapshot
}

var validSources = map[domain.Source]bool{
	domain.SourceLinkedIn:       true,
	domain.SourceIndeed:         true,
	domain.SourceGlassdoor:      true,
	domain.SourceRemoteOK:       true,
	domain.SourceCompanyWebsite: true,
}

type JobsHandler struct {
	engine     Engine
	maxResults int
}

func NewJobsHandler(engine Engine, maxResults int) *JobsHandler {
	if maxResults <= 0 {
		maxResults = 50
	}
	return &JobsHandler{engine: engine, maxResults: maxResults}
}

// HandleSourceJobs serves POST /jobs/:source — a single-source refresh with
// the same fallback substitution the aggregated search applies.
func (h *JobsHandler) HandleSourceJobs(c fiber.Ctx) error {
	tag := domain.Source(strings.ToLower(strings.TrimSpace(c.Params("source"))))
	if !validSources[tag] {
		return middleware.NewAppError(fiber.StatusBadRequest, "unknown source", fmt.Errorf("source %q", tag))
	}

	var req domain.SearchRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "invalid search payload", err)
		}
	}
	if req.Limit <= 0 || req.Limit > h.maxResults {
		req.Limit = h.maxResults
	}

	jobs := h.engine.SourceJobs(c.Context(), tag, req)
	if len(jobs) > req.Limit {
		jobs = jobs[:req.Limit]
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, domain.SearchResults{
		Count:   len(jobs),
		Sources: []string{string(tag)},
		Jobs:    jobs,
	})
}
