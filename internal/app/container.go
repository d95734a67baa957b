package app

import (
	"context"
	"log"
	"os"
	"time"

	"jobpulse/internal/aggregate"
	"jobpulse/internal/cache"
	"jobpulse/internal/config"
	"jobpulse/internal/domain"
	"jobpulse/internal/relay"
	"jobpulse/internal/source"
	"jobpulse/internal/store"
	"jobpulse/internal/trending"
)

// Container owns every long-lived dependency. It is built once at startup
// and handed around by reference; Close releases everything it opened.
type Container struct {
	Config     config.Config
	Logger     *log.Logger
	Cache      *cache.Redis
	DB         store.DB
	Telemetry  *store.Telemetry
	Engine     *aggregate.Engine
	Hub        *relay.Hub
	Dispatcher *relay.Dispatcher
	Trending   *trending.Refresher
}

func NewContainer(cfg config.Config) (*Container, error) {
	logger := log.New(os.Stdout, cfg.App.AppName+" | ", log.LstdFlags)

	redisCache := cache.NewRedis(cfg.Redis, logger)

	var db store.DB
	if cfg.Database.Configured() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := store.Connect(ctx, cfg.Database)
		cancel()
		if err != nil {
			logger.Printf("app: database unavailable, telemetry disabled | err=%v", err)
		} else {
			db = conn
		}
	}
	telemetry := store.NewTelemetry(db, logger)

	engine := aggregate.New(
		buildAdapters(cfg.Providers, cfg.Relay.AdapterTimeout),
		logger,
		aggregate.WithCache(redisCache, 5*time.Minute),
		aggregate.WithCompanyAPI(source.NewCompanyAPIAdapter(cfg.Providers.CompanyAPIBase, cfg.Relay.AdapterTimeout)),
		aggregate.WithAnalyticsReader(telemetry),
		aggregate.WithAdapterTimeout(cfg.Relay.AdapterTimeout),
	)

	hub := relay.NewHub(logger)
	dispatcher := relay.NewDispatcher(engine, telemetry, cfg.Relay.MaxResults, logger)
	refresher := trending.New(engine, hub, cfg.Relay.TrendingSpec, cfg.Relay.TrendingKeywords, logger)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Cache:      redisCache,
		DB:         db,
		Telemetry:  telemetry,
		Engine:     engine,
		Hub:        hub,
		Dispatcher: dispatcher,
		Trending:   refresher,
	}, nil
}

// buildAdapters wires one adapter per upstream. Disabling real-data mode
// constructs every adapter unconfigured, which routes all sources to the
// fallback generator.
func buildAdapters(p config.ProvidersConfig, timeout time.Duration) []source.Adapter {
	if !p.RealDataMode {
		p = config.ProvidersConfig{}
	}

	adapters := []source.Adapter{
		source.NewLinkedInAdapter(p.LinkedInKey, timeout),
		source.NewIndeedAdapter(p.IndeedPublisher, timeout),
		source.NewGlassdoorAdapter(p.GlassdoorKey, timeout),
		source.NewRemoteOKAdapter(p.RealDataMode, timeout),
	}
	if p.JSearchKey != "" {
		adapters = append(adapters, source.NewJSearchAdapter(p.JSearchKey, domain.SourceGlassdoor, timeout))
	}
	if targets := source.ParseCareersTargets(p.CareersTargets); len(targets) > 0 {
		adapters = append(adapters, source.NewCareersAdapter(targets, timeout, true))
	}
	return adapters
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Trending != nil {
		c.Trending.Stop()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
