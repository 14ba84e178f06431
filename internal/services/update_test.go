package services

import (
	"context"
	"errors"
	"route-itinerary-service/internal/adapters/backend"
	"route-itinerary-service/internal/domain"
	"testing"
)

// committedRoute commits the three-stop draft and returns the route id and
// the backend row id of each landmark.
func committedRoute(t *testing.T, h *harness) (int, map[int]int) {
	t.Helper()
	ctx := context.Background()
	rec, err := h.committer.Commit(ctx, threeStopDraft(t))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	rows, err := h.backend.ListRouteLandmarks(ctx, rec.RouteID)
	if err != nil {
		t.Fatalf("ListRouteLandmarks: %v", err)
	}
	ids := make(map[int]int, len(rows))
	for _, r := range rows {
		ids[r.LandmarkID] = r.ID
	}
	return rec.RouteID, ids
}

func findRow(t *testing.T, h *harness, routeID, rowID int) domain.RouteLandmark {
	t.Helper()
	rows, _ := h.backend.ListRouteLandmarks(context.Background(), routeID)
	for _, r := range rows {
		if r.ID == rowID {
			return r
		}
	}
	t.Fatalf("row %d not found on route %d", rowID, routeID)
	return domain.RouteLandmark{}
}

func TestAppendUsesPersistedStart(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	routeID, _ := committedRoute(t, h)

	rl, err := h.committer.Append(ctx, routeID, domain.StopInput{
		LandmarkID: 4,
		Distance:   "3000",
		Arrival:    at(6, 45, domain.AM),
		Departure:  at(6, 50, domain.AM),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rl.SequenceID != 2 || rl.ArrivalDelta != 2700 || rl.DepartureDelta != 3000 {
		t.Fatalf("appended = %+v", rl)
	}

	// duplicate times are accepted on an existing route
	if _, err := h.committer.Append(ctx, routeID, domain.StopInput{
		LandmarkID: 5,
		Distance:   "4000",
		Arrival:    at(6, 45, domain.AM),
		Departure:  at(6, 50, domain.AM),
	}); err != nil {
		t.Fatalf("duplicate time on append: %v", err)
	}
}

func TestAppendBeyondLastStopNeverDwells(t *testing.T) {
	h := newHarness()
	routeID, _ := committedRoute(t, h)

	rl, err := h.committer.Append(context.Background(), routeID, domain.StopInput{
		LandmarkID: 4,
		Distance:   "9000",
		Arrival:    at(8, 30, domain.AM),
		Departure:  at(8, 40, domain.AM),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rl.SequenceID != 4 || rl.ArrivalDelta != 9000 || rl.DepartureDelta != 9000 {
		t.Fatalf("appended = %+v", rl)
	}
}

func TestAppendValidation(t *testing.T) {
	h := newHarness()
	routeID, _ := committedRoute(t, h)

	tests := []struct {
		name  string
		in    domain.StopInput
		field string
	}{
		{"missing arrival", domain.StopInput{LandmarkID: 4, Distance: "3000", Departure: at(7, 0, domain.AM)}, "arrival"},
		{"missing departure", domain.StopInput{LandmarkID: 4, Distance: "3000", Arrival: at(7, 0, domain.AM)}, "departure"},
		{"non-numeric distance", domain.StopInput{LandmarkID: 4, Distance: "far", Arrival: at(7, 0, domain.AM), Departure: at(7, 5, domain.AM)}, "distance_from_start"},
		{"landmark already on route", domain.StopInput{LandmarkID: 2, Distance: "3000", Arrival: at(7, 0, domain.AM), Departure: at(7, 5, domain.AM)}, "landmark_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.committer.Append(context.Background(), routeID, tt.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected ValidationError on %q, got %v", tt.field, err)
			}
		})
	}
	if n := h.backend.LandmarkCreates(); n != 3 {
		t.Fatalf("rejected appends reached the backend: %d creates", n)
	}
}

func TestAppendMapsUnprocessable(t *testing.T) {
	h := newHarness()
	routeID, _ := committedRoute(t, h)
	h.backend.FailLandmark(4, &backend.StatusError{Code: 422, Body: "invalid delta"})

	_, err := h.committer.Append(context.Background(), routeID, domain.StopInput{
		LandmarkID: 4,
		Distance:   "3000",
		Arrival:    at(6, 45, domain.AM),
		Departure:  at(6, 50, domain.AM),
	})
	if !errors.Is(err, domain.ErrBackendRejectedTimes) || !errors.Is(err, domain.ErrUnprocessable) {
		t.Fatalf("expected rejected-times error, got %v", err)
	}
}

func TestUpdateRecomputesDeltas(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	routeID, ids := committedRoute(t, h)

	dist := 8500.0
	got, err := h.committer.Update(ctx, routeID, LandmarkEdit{
		RouteLandmarkID:   ids[3],
		Arrival:           "08:30 AM",
		Departure:         "8:35 am",
		DistanceFromStart: &dist,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ArrivalDelta != 9000 || got.DepartureDelta != 9300 {
		t.Fatalf("update = %+v", got)
	}

	row := findRow(t, h, routeID, ids[3])
	if row.ArrivalDelta != 9000 || row.DepartureDelta != 9300 || row.DistanceFromStart != 8500 {
		t.Fatalf("stored row = %+v", row)
	}
}

func TestUpdateAllowsDuplicateTimes(t *testing.T) {
	h := newHarness()
	routeID, ids := committedRoute(t, h)

	if _, err := h.committer.Update(context.Background(), routeID, LandmarkEdit{
		RouteLandmarkID: ids[3],
		Arrival:         "07:15 AM",
		Departure:       "07:20 AM",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateNextDayArrival(t *testing.T) {
	h := newHarness()
	routeID, ids := committedRoute(t, h)

	got, err := h.committer.Update(context.Background(), routeID, LandmarkEdit{
		RouteLandmarkID: ids[3],
		Arrival:         "12:30 AM",
		ArrivalDay:      1,
		Departure:       "12:30 AM",
		DepartureDay:    1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 06:00 to 00:30 the next day
	if got.ArrivalDelta != 66600 || got.DepartureDelta != 66600 {
		t.Fatalf("update = %+v", got)
	}
}

func TestUpdateRejectsBadInput(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	routeID, ids := committedRoute(t, h)

	tests := []struct {
		name string
		edit LandmarkEdit
		want string
	}{
		{"bad arrival", LandmarkEdit{RouteLandmarkID: ids[2], Arrival: "quarter past", Departure: "07:20 AM"}, "Invalid arrival time format"},
		{"arrival with seconds", LandmarkEdit{RouteLandmarkID: ids[2], Arrival: "07:15:30", Departure: "07:20 AM"}, "Invalid arrival time format"},
		{"bad departure", LandmarkEdit{RouteLandmarkID: ids[2], Arrival: "07:15 AM", Departure: "25:99"}, "Invalid departure time format"},
		{"departure before arrival", LandmarkEdit{RouteLandmarkID: ids[2], Arrival: "07:15 AM", Departure: "07:10 AM"}, "departure: " + domain.MsgDepartureBeforeArr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.committer.Update(ctx, routeID, tt.edit)
			if err == nil {
				t.Fatal("expected error")
			}
			var tfe *domain.TimeFormatError
			var ve *domain.ValidationError
			switch {
			case errors.As(err, &tfe):
				if tfe.Error() != tt.want {
					t.Fatalf("error = %q, want %q", tfe.Error(), tt.want)
				}
			case errors.As(err, &ve):
				if ve.Error() != tt.want {
					t.Fatalf("error = %q, want %q", ve.Error(), tt.want)
				}
			default:
				t.Fatalf("unexpected error type: %v", err)
			}
		})
	}

	if _, err := h.committer.Update(ctx, routeID, LandmarkEdit{RouteLandmarkID: 999, Arrival: "07:15 AM", Departure: "07:20 AM"}); !errors.Is(err, domain.ErrLandmarkNotFound) {
		t.Fatalf("expected ErrLandmarkNotFound, got %v", err)
	}
}

func TestUpdateRejectsUnparseableStartingTime(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	route, _ := h.backend.CreateRoute(ctx, "Legacy", "half past six")
	rl, _ := h.backend.CreateRouteLandmark(ctx, route.ID, domain.LandmarkPlan{LandmarkID: 1, SequenceID: 1})

	_, err := h.committer.Update(ctx, route.ID, LandmarkEdit{RouteLandmarkID: rl.ID, Arrival: "07:15 AM", Departure: "07:20 AM"})
	var tfe *domain.TimeFormatError
	if !errors.As(err, &tfe) || tfe.Error() != "Invalid starting time format" {
		t.Fatalf("expected starting time format error, got %v", err)
	}
}

func TestUpdateMapsUnprocessable(t *testing.T) {
	h := newHarness()
	routeID, ids := committedRoute(t, h)
	h.backend.FailLandmark(2, &backend.StatusError{Code: 422, Body: "Unprocessable"})

	_, err := h.committer.Update(context.Background(), routeID, LandmarkEdit{
		RouteLandmarkID: ids[2],
		Arrival:         "07:15 AM",
		Departure:       "07:20 AM",
	})
	if !errors.Is(err, domain.ErrBackendRejectedTimes) {
		t.Fatalf("expected rejected-times error, got %v", err)
	}
}

func TestItineraryRenumbersAfterDelete(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	routeID, ids := committedRoute(t, h)

	if err := h.committer.DeleteLandmark(ctx, routeID, ids[2]); err != nil {
		t.Fatalf("DeleteLandmark: %v", err)
	}
	if err := h.committer.DeleteLandmark(ctx, routeID, ids[2]); !errors.Is(err, domain.ErrLandmarkNotFound) {
		t.Fatalf("second delete: expected ErrLandmarkNotFound, got %v", err)
	}

	it, err := h.committer.Itinerary(ctx, routeID)
	if err != nil {
		t.Fatalf("Itinerary: %v", err)
	}
	if len(it.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(it.Stops))
	}
	last := it.Stops[1]
	if last.LandmarkID != 3 || last.SequenceID != 2 || last.StoredSequenceID != 3 {
		t.Fatalf("last stop = %+v", last)
	}
	if last.Arrival.String() != "08:00 AM" || it.Start.String() != "06:00 AM" {
		t.Fatalf("arrival = %s, start = %s", last.Arrival, it.Start)
	}
}

func TestUpdateRouteMovesStart(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	routeID, _ := committedRoute(t, h)

	route, err := h.committer.UpdateRoute(ctx, routeID, "  ", at(7, 0, domain.AM))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Name != "Route 9" || route.StartingTime != "01:30:00Z" {
		t.Fatalf("route = %+v", route)
	}

	it, _ := h.committer.Itinerary(ctx, routeID)
	// stops are offsets, so they shift with the start
	if got := it.Stops[2].Arrival.String(); got != "09:00 AM" {
		t.Fatalf("terminal arrival = %s, want 09:00 AM", got)
	}

	if _, err := h.committer.UpdateRoute(ctx, routeID, "", &domain.CivilTime{Hour: 13, Meridiem: domain.PM}); err == nil {
		t.Fatal("expected validation error for hour 13")
	}
}
