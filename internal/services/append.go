package services

import (
	"context"
	"fmt"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/platform/obs"
)

// Append adds one stop to an already persisted route. The start time is
// the route's authoritative starting_time on the backend, not any local state.
func (c *Committer) Append(ctx context.Context, routeID int, in domain.StopInput) (_ domain.RouteLandmark, err error) {
	defer obs.Time(ctx, "itinerary.Append")(&err)

	route, err := c.Backend.GetRoute(ctx, routeID)
	if err != nil {
		return domain.RouteLandmark{}, fmt.Errorf("append landmark: %w", err)
	}

	start, err := domain.ParseStartingTime(route.StartingTime, c.Offset)
	if err != nil {
		return domain.RouteLandmark{}, fmt.Errorf("append landmark: route %d: %w", routeID, err)
	}

	rows, err := c.Backend.ListRouteLandmarks(ctx, routeID)
	if err != nil {
		return domain.RouteLandmark{}, fmt.Errorf("append landmark: %w", err)
	}

	plan, err := domain.PrepareAppend(start, c.Offset, rows, in)
	if err != nil {
		return domain.RouteLandmark{}, fmt.Errorf("append landmark: %w", err)
	}

	rl, err := c.Backend.CreateRouteLandmark(ctx, routeID, plan)
	c.observeWrite("create", err)
	if err != nil {
		return domain.RouteLandmark{}, landmarkWriteError("append landmark", err)
	}

	return rl, nil
}
