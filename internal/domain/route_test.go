package domain

import (
	"testing"
)

func TestBuildItineraryRenumbersByDistance(t *testing.T) {
	route := Route{ID: 7, Name: "Night Owl", StartingTime: "17:30:00Z"}
	rows := []RouteLandmark{
		{ID: 30, LandmarkID: 3, SequenceID: 4, DistanceFromStart: 40000, ArrivalDelta: 7200, DepartureDelta: 7200},
		{ID: 10, LandmarkID: 1, SequenceID: 1, DistanceFromStart: 0},
		{ID: 20, LandmarkID: 2, SequenceID: 3, DistanceFromStart: 12000, ArrivalDelta: 1800, DepartureDelta: 2100},
	}

	it, err := BuildItinerary(route, rows, DefaultCivilOffset)
	if err != nil {
		t.Fatalf("BuildItinerary: %v", err)
	}

	if want := (CivilTime{Hour: 11, Minute: 0, Meridiem: PM}); it.Start != want {
		t.Fatalf("start = %+v, want %+v", it.Start, want)
	}

	wantIDs := []int{1, 2, 3}
	for i, s := range it.Stops {
		if s.LandmarkID != wantIDs[i] {
			t.Fatalf("stop %d landmark = %d, want %d", i, s.LandmarkID, wantIDs[i])
		}
		if s.SequenceID != i+1 {
			t.Fatalf("stop %d sequence = %d, want %d", i, s.SequenceID, i+1)
		}
	}
	if it.Stops[2].StoredSequenceID != 4 {
		t.Fatalf("stored sequence hint lost: %d", it.Stops[2].StoredSequenceID)
	}

	if want := (CivilTime{Hour: 1, Minute: 0, Meridiem: AM, DayOffset: 1}); it.Stops[2].Arrival != want {
		t.Fatalf("arrival = %+v, want %+v", it.Stops[2].Arrival, want)
	}
	if want := (CivilTime{Hour: 11, Minute: 35, Meridiem: PM}); it.Stops[1].Departure != want {
		t.Fatalf("departure = %+v, want %+v", it.Stops[1].Departure, want)
	}
}

func TestBuildItineraryBadStartingTime(t *testing.T) {
	_, err := BuildItinerary(Route{ID: 1, StartingTime: "6 o'clock"}, nil, DefaultCivilOffset)
	if err == nil || err.Error() != "Invalid starting time format" {
		t.Fatalf("unexpected error: %v", err)
	}
}
