package routes

import (
	"jobpulse/internal/delivery/http/handler"
	"jobpulse/internal/relay"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health    *handler.HealthHandler
	jobs      *handler.JobsHandler
	companies *handler.CompaniesHandler
	analytics *handler.AnalyticsHandler
	ws        *relay.Handler
}

func NewRegistry(engine handler.Engine, maxResults int, ws *relay.Handler, clientCount func() int) *Registry {
	return &Registry{
		health:    handler.NewHealthHandler(clientCount),
		jobs:      handler.NewJobsHandler(engine, maxResults),
		companies: handler.NewCompaniesHandler(engine),
		analytics: handler.NewAnalyticsHandler(engine),
		ws:        ws,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	app.Get("/health", r.health.HandleHealth)
	app.Post("/jobs/:source", r.jobs.HandleSourceJobs)
	app.Get("/companies/:name", r.companies.HandleGetCompany)
	app.Get("/analytics/:userId", r.analytics.HandleGetAnalytics)

	if r.ws != nil {
		app.Get("/ws", r.ws.HandleWS)
	}
}
