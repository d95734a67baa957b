package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobpulse/internal/app"
	"jobpulse/internal/config"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("relay: config load failed | err=%v", err)
	}

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatalf("relay: invalid HTTP port | err=%v", err)
	}

	application, cleanup, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("relay: bootstrap failed | err=%v", err)
	}
	c := application.Container

	trendingSpec := cfg.Relay.TrendingSpec
	if trendingSpec == "" {
		trendingSpec = "disabled"
	}
	c.Logger.Printf("relay: starting | env=%s addr=%s max_results=%d sources=%d trending=%s",
		cfg.App.Environment, addr, cfg.Relay.MaxResults, len(c.Engine.Sources()), trendingSpec)

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			_ = cleanup()
			log.Fatalf("relay: server error | err=%v", err)
		}
	case sig := <-sigCh:
		// Stop accepting new connections first, then let the container tear
		// down the trending refresher, cache and database.
		c.Logger.Printf("relay: shutting down | signal=%s connected_clients=%d", sig, c.Hub.ClientCount())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		if err := application.Fiber.ShutdownWithContext(ctx); err != nil {
			c.Logger.Printf("relay: shutdown error | err=%v", err)
		}
		cancel()
	}

	if err := cleanup(); err != nil {
		c.Logger.Printf("relay: cleanup error | err=%v", err)
	}
	c.Logger.Printf("relay: stopped")
}
