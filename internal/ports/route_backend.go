package ports

import (
	"context"
	"route-itinerary-service/internal/domain"
)

// Port: a boundary for the operator backend's route and route-landmark endpoints.
// The backend has no notion of a draft; every stop is a separate association.
type RouteBackend interface {
	// Create a route record and return it with its backend id.
	CreateRoute(ctx context.Context, name string, startingTime string) (domain.Route, error)
	// Fetch a route, including its authoritative starting time.
	GetRoute(ctx context.Context, id int) (domain.Route, error)
	// Rename a route or move its starting time.
	UpdateRoute(ctx context.Context, route domain.Route) error
	DeleteRoute(ctx context.Context, id int) error

	// Associate one landmark with a route.
	CreateRouteLandmark(ctx context.Context, routeID int, plan domain.LandmarkPlan) (domain.RouteLandmark, error)
	// Re-supply the deltas, and optionally the distance, of an association.
	UpdateRouteLandmark(ctx context.Context, update domain.LandmarkUpdate) error
	DeleteRouteLandmark(ctx context.Context, id int) error
	// List every association of a route in storage order.
	ListRouteLandmarks(ctx context.Context, routeID int) ([]domain.RouteLandmark, error)
}
