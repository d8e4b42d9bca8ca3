package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/terastudio-org/BaileysHelper/internal/api"
	"github.com/terastudio-org/BaileysHelper/internal/config"
	"github.com/terastudio-org/BaileysHelper/internal/events"
	"github.com/terastudio-org/BaileysHelper/internal/idempotency"
	"github.com/terastudio-org/BaileysHelper/internal/metrics"
	"github.com/terastudio-org/BaileysHelper/internal/store"
	"github.com/terastudio-org/BaileysHelper/internal/throttle"
	"github.com/terastudio-org/BaileysHelper/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := store.NewBoltStore(cfg.DataDir + "/baileyshelper.db")
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer db.Close()

	// An absent dependency must stay a nil interface, not a typed nil pointer.
	var idem api.DuplicateChecker
	if cfg.RedisURL != "" {
		checker, err := idempotency.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("idempotency: %v", err)
		}
		defer checker.Close()
		idem = checker
	} else {
		log.Println("baileyshelper: REDIS_URL not set, request deduplication disabled")
	}

	var publisher api.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("events: %v", err)
		}
		defer p.Close()
		publisher = p
	} else {
		log.Println("baileyshelper: AMQP_URL not set, event publishing disabled")
	}

	manifest := transport.DefaultManifest()
	if cfg.ProvidersFile != "" {
		manifest, err = transport.LoadManifest(cfg.ProvidersFile)
		if err != nil {
			log.Fatalf("transport: %v", err)
		}
	}

	// The gateway must answer one known variant before we accept traffic.
	discoverCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	gateway, err := transport.Discover(discoverCtx, cfg.GatewayURL, cfg.GatewayToken, manifest)
	cancel()
	if err != nil {
		log.Fatalf("transport: %v", err)
	}

	collector := metrics.New()
	collector.SetProvider(gateway.Provider())

	limiter := throttle.New(cfg.RateLimitPerMinute)

	// Periodic cleanup of stale per-destination locks to prevent memory leaks
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Cleanup(1 * time.Hour)
		}
	}()

	handler := api.NewHandler(gateway, db, limiter, idem, publisher, collector, cfg.APIToken)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(collector.Middleware)
	handler.Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("baileyshelper: listening on :%s (gateway variant %s)", cfg.Port, gateway.Provider())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("baileyshelper: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("baileyshelper: stopped")
}
