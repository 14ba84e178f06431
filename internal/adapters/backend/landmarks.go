package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/platform/obs"
	"strconv"
)

// Deltas travel as strings of whole seconds.
type landmarkCreateRequest struct {
	RouteID           int     `json:"route_id"`
	LandmarkID        int     `json:"landmark_id"`
	SequenceID        int     `json:"sequence_id"`
	DistanceFromStart float64 `json:"distance_from_start"`
	ArrivalDelta      int64   `json:"arrival_delta,string"`
	DepartureDelta    int64   `json:"departure_delta,string"`
}

type landmarkUpdateRequest struct {
	ID                int      `json:"id"`
	ArrivalDelta      int64    `json:"arrival_delta,string"`
	DepartureDelta    int64    `json:"departure_delta,string"`
	DistanceFromStart *float64 `json:"distance_from_start,omitempty"`
}

type landmarkResponse struct {
	ID                flexInt   `json:"id"`
	RouteID           flexInt   `json:"route_id"`
	LandmarkID        flexInt   `json:"landmark_id"`
	SequenceID        flexInt   `json:"sequence_id"`
	DistanceFromStart flexFloat `json:"distance_from_start"`
	ArrivalDelta      flexInt   `json:"arrival_delta"`
	DepartureDelta    flexInt   `json:"departure_delta"`
}

func (r landmarkResponse) toDomain() domain.RouteLandmark {
	return domain.RouteLandmark{
		ID:                int(r.ID),
		RouteID:           int(r.RouteID),
		LandmarkID:        int(r.LandmarkID),
		SequenceID:        int(r.SequenceID),
		DistanceFromStart: float64(r.DistanceFromStart),
		ArrivalDelta:      int64(r.ArrivalDelta),
		DepartureDelta:    int64(r.DepartureDelta),
	}
}

func (c *Client) CreateRouteLandmark(
	ctx context.Context,
	routeID int,
	plan domain.LandmarkPlan,
) (_ domain.RouteLandmark, err error) {
	defer obs.Time(ctx, "backend.CreateRouteLandmark")(&err)

	body := landmarkCreateRequest{
		RouteID:           routeID,
		LandmarkID:        plan.LandmarkID,
		SequenceID:        plan.SequenceID,
		DistanceFromStart: plan.DistanceFromStart,
		ArrivalDelta:      plan.ArrivalDelta,
		DepartureDelta:    plan.DepartureDelta,
	}

	var out landmarkResponse
	if err := c.send(ctx, http.MethodPost, "/route/landmark", body, &out); err != nil {
		return domain.RouteLandmark{}, fmt.Errorf(
			"create route %d landmark %d: %w",
			routeID, plan.LandmarkID, err,
		)
	}

	// Fill what the backend did not echo back.
	rl := out.toDomain()
	if rl.RouteID == 0 {
		rl.RouteID = routeID
	}
	if rl.LandmarkID == 0 {
		rl.LandmarkID = plan.LandmarkID
		rl.SequenceID = plan.SequenceID
		rl.DistanceFromStart = plan.DistanceFromStart
		rl.ArrivalDelta = plan.ArrivalDelta
		rl.DepartureDelta = plan.DepartureDelta
	}

	return rl, nil
}

func (c *Client) UpdateRouteLandmark(ctx context.Context, update domain.LandmarkUpdate) (err error) {
	defer obs.Time(ctx, "backend.UpdateRouteLandmark")(&err)

	body := landmarkUpdateRequest{
		ID:                update.ID,
		ArrivalDelta:      update.ArrivalDelta,
		DepartureDelta:    update.DepartureDelta,
		DistanceFromStart: update.DistanceFromStart,
	}
	if err := c.send(ctx, http.MethodPatch, "/route/landmark", body, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("update route landmark %d: %w", update.ID, domain.ErrLandmarkNotFound)
		}
		return fmt.Errorf("update route landmark %d: %w", update.ID, err)
	}
	return nil
}

func (c *Client) DeleteRouteLandmark(ctx context.Context, id int) (err error) {
	defer obs.Time(ctx, "backend.DeleteRouteLandmark")(&err)

	if err := c.send(ctx, http.MethodDelete, "/route/landmark", idRequest{ID: id}, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("delete route landmark %d: %w", id, domain.ErrLandmarkNotFound)
		}
		return fmt.Errorf("delete route landmark %d: %w", id, err)
	}
	return nil
}

func (c *Client) ListRouteLandmarks(ctx context.Context, routeID int) (_ []domain.RouteLandmark, err error) {
	defer obs.Time(ctx, "backend.ListRouteLandmarks")(&err)

	var rows []landmarkResponse
	path := "/route/landmark?" + url.Values{"route_id": {strconv.Itoa(routeID)}}.Encode()
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("list route %d landmarks: %w", routeID, err)
	}

	out := make([]domain.RouteLandmark, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
