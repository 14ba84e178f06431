package services

import (
	"context"
	"fmt"
	"math"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/platform/obs"
	"strings"
	"time"
)

// LandmarkEdit carries the operator's edited local times for one stop.
type LandmarkEdit struct {
	RouteLandmarkID   int
	Arrival           string
	ArrivalDay        int
	Departure         string
	DepartureDay      int
	DistanceFromStart *float64
}

// Update recomputes a stop's deltas against the route's starting time and
// sends a single PATCH. Unlike new-route authoring, identical times on
// different stops are not rejected here.
func (c *Committer) Update(ctx context.Context, routeID int, edit LandmarkEdit) (_ domain.LandmarkUpdate, err error) {
	defer obs.Time(ctx, "itinerary.Update")(&err)

	route, rows, err := c.routeWithLandmarks(ctx, routeID)
	if err != nil {
		return domain.LandmarkUpdate{}, fmt.Errorf("update landmark: %w", err)
	}
	if !owns(rows, edit.RouteLandmarkID) {
		return domain.LandmarkUpdate{}, fmt.Errorf(
			"update landmark %d on route %d: %w",
			edit.RouteLandmarkID, routeID, domain.ErrLandmarkNotFound,
		)
	}

	start, err := domain.ParseStartingTime(route.StartingTime, c.Offset)
	if err != nil {
		return domain.LandmarkUpdate{}, fmt.Errorf("update landmark: %w", err)
	}

	arrival, err := parseEditedTime("arrival", edit.Arrival, edit.ArrivalDay, c.Offset)
	if err != nil {
		return domain.LandmarkUpdate{}, fmt.Errorf("update landmark: %w", err)
	}
	departure, err := parseEditedTime("departure", edit.Departure, edit.DepartureDay, c.Offset)
	if err != nil {
		return domain.LandmarkUpdate{}, fmt.Errorf("update landmark: %w", err)
	}
	if departure.Before(arrival) {
		return domain.LandmarkUpdate{}, &domain.ValidationError{Field: "departure", Reason: domain.MsgDepartureBeforeArr}
	}

	if d := edit.DistanceFromStart; d != nil && (*d < 0 || math.IsNaN(*d) || math.IsInf(*d, 0)) {
		return domain.LandmarkUpdate{}, &domain.ValidationError{
			Field:  "distance_from_start",
			Reason: "distance from start must be a non-negative number",
		}
	}

	arrDelta, depDelta := domain.StopDeltas(start, arrival, departure)
	update := domain.LandmarkUpdate{
		ID:                edit.RouteLandmarkID,
		ArrivalDelta:      arrDelta,
		DepartureDelta:    depDelta,
		DistanceFromStart: edit.DistanceFromStart,
	}

	err = c.Backend.UpdateRouteLandmark(ctx, update)
	c.observeWrite("update", err)
	if err != nil {
		return domain.LandmarkUpdate{}, landmarkWriteError("update landmark", err)
	}

	return update, nil
}

// DeleteLandmark removes one stop. Remaining rows keep their stored sequence
// ids; display order is recomputed on read.
func (c *Committer) DeleteLandmark(ctx context.Context, routeID, routeLandmarkID int) (err error) {
	defer obs.Time(ctx, "itinerary.DeleteLandmark")(&err)

	rows, err := c.Backend.ListRouteLandmarks(ctx, routeID)
	if err != nil {
		return fmt.Errorf("delete landmark: %w", err)
	}
	if !owns(rows, routeLandmarkID) {
		return fmt.Errorf("delete landmark %d on route %d: %w", routeLandmarkID, routeID, domain.ErrLandmarkNotFound)
	}

	err = c.Backend.DeleteRouteLandmark(ctx, routeLandmarkID)
	c.observeWrite("delete", err)
	if err != nil {
		return fmt.Errorf("delete landmark: %w", err)
	}
	return nil
}

// UpdateRoute renames a route or moves its start. Moving the start shifts
// every stop, since stops are stored as offsets from it.
func (c *Committer) UpdateRoute(ctx context.Context, routeID int, name string, start *domain.CivilTime) (_ domain.Route, err error) {
	defer obs.Time(ctx, "itinerary.UpdateRoute")(&err)

	route, err := c.Backend.GetRoute(ctx, routeID)
	if err != nil {
		return domain.Route{}, fmt.Errorf("update route: %w", err)
	}

	if name = strings.TrimSpace(name); name != "" {
		route.Name = name
	}
	if start != nil {
		if err := start.Validate(); err != nil {
			return domain.Route{}, &domain.ValidationError{Field: "starting_time", Reason: err.Error()}
		}
		route.StartingTime = domain.FormatStartingTime(domain.StartInstant(*start, c.Offset))
	}

	if err := c.Backend.UpdateRoute(ctx, route); err != nil {
		return domain.Route{}, fmt.Errorf("update route: %w", err)
	}
	return route, nil
}

// Itinerary reads a persisted route and renumbers its stops by distance.
func (c *Committer) Itinerary(ctx context.Context, routeID int) (_ domain.Itinerary, err error) {
	defer obs.Time(ctx, "itinerary.Read")(&err)

	route, rows, err := c.routeWithLandmarks(ctx, routeID)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("read itinerary: %w", err)
	}

	it, err := domain.BuildItinerary(route, rows, c.Offset)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("read itinerary: route %d: %w", routeID, err)
	}
	return it, nil
}

func (c *Committer) routeWithLandmarks(ctx context.Context, routeID int) (domain.Route, []domain.RouteLandmark, error) {
	route, err := c.Backend.GetRoute(ctx, routeID)
	if err != nil {
		return domain.Route{}, nil, err
	}
	rows, err := c.Backend.ListRouteLandmarks(ctx, routeID)
	if err != nil {
		return domain.Route{}, nil, err
	}
	return route, rows, nil
}

func parseEditedTime(field, s string, day int, offset domain.CivilOffset) (time.Time, error) {
	c, err := domain.ParseCivilTime(s, day)
	if err != nil || day < 0 {
		return time.Time{}, &domain.TimeFormatError{Field: field, Value: s}
	}
	return domain.ToInstant(c, offset), nil
}

func owns(rows []domain.RouteLandmark, id int) bool {
	for _, r := range rows {
		if r.ID == id {
			return true
		}
	}
	return false
}
