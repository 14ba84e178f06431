package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"route-itinerary-service/internal/api"
	"route-itinerary-service/internal/app"
	"route-itinerary-service/internal/config"
	"syscall"
	"time"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	deps := api.Deps{
		Drafts:      a.Drafts,
		Routes:      a.Committer,
		Journal:     a.Journal,
		Metrics:     a.Metrics,
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.MetricsAddr != "" {
		ms := a.Metrics.Serve(cfg.MetricsAddr)
		defer ms.Close()
	} else {
		deps.MetricsHandler = a.Metrics.Handler()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// A commit waits on one backend call per stop.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server listening addr=:%s civil_offset=%s drafts=%s journal=%s", cfg.Port, cfg.CivilOffset, cfg.DraftStore, cfg.JournalDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
