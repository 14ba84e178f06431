package api

import (
	"net/http"
	"route-itinerary-service/internal/api/handlers"
	"route-itinerary-service/internal/ports"
	"route-itinerary-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Deps are the services the console API is built on. Metrics and
// MetricsHandler are optional.
type Deps struct {
	Drafts         *services.DraftService
	Routes         *services.Committer
	Journal        ports.CommitJournal
	Metrics        RequestMetrics
	MetricsHandler http.Handler
	CORSOrigins    []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(d.Metrics))

	drafts := &handlers.DraftHandler{Drafts: d.Drafts}
	routes := &handlers.RouteHandler{Routes: d.Routes}
	commits := &handlers.CommitHandler{Journal: d.Journal}

	r.Get("/health", handlers.Health)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", drafts.Create)
		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", drafts.Get)
			r.Delete("/", drafts.Discard)
			r.Post("/stops", drafts.AddStop)
			r.Delete("/stops/{landmarkID}", drafts.RemoveStop)
			r.Post("/commit", drafts.Commit)
		})
	})

	r.Route("/routes/{routeID}", func(r chi.Router) {
		r.Patch("/", routes.UpdateRoute)
		r.Get("/itinerary", routes.Itinerary)
		r.Get("/itinerary.ics", routes.ItineraryICS)
		r.Post("/landmarks", routes.AppendLandmark)
		r.Patch("/landmarks/{routeLandmarkID}", routes.UpdateLandmark)
		r.Delete("/landmarks/{routeLandmarkID}", routes.DeleteLandmark)
	})

	r.Get("/commits", commits.List)

	return r
}
