package domain

import (
	"cmp"
	"slices"
	"time"
)

// Route is the backend-owned route record. StartingTime is the bare
// time-of-day wire string, e.g. "00:30:00Z".
type Route struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	StartingTime string `json:"starting_time"`
}

// RouteLandmark is one persisted stop of a route. Deltas are whole seconds
// from the route's start; SequenceID is the value assigned at creation and
// may drift after independent deletes.
type RouteLandmark struct {
	ID                int     `json:"id"`
	RouteID           int     `json:"route_id"`
	LandmarkID        int     `json:"landmark_id"`
	SequenceID        int     `json:"sequence_id"`
	DistanceFromStart float64 `json:"distance_from_start"`
	ArrivalDelta      int64   `json:"arrival_delta"`
	DepartureDelta    int64   `json:"departure_delta"`
}

// LandmarkPlan is everything needed to create one route landmark.
type LandmarkPlan struct {
	LandmarkID        int     `json:"landmark_id"`
	LandmarkName      string  `json:"landmark_name,omitempty"`
	SequenceID        int     `json:"sequence_id"`
	DistanceFromStart float64 `json:"distance_from_start"`
	ArrivalDelta      int64   `json:"arrival_delta"`
	DepartureDelta    int64   `json:"departure_delta"`
}

// LandmarkUpdate re-supplies the deltas of an existing route landmark.
// A nil DistanceFromStart leaves the stored distance untouched.
type LandmarkUpdate struct {
	ID                int
	ArrivalDelta      int64
	DepartureDelta    int64
	DistanceFromStart *float64
}

// SequencePersisted orders persisted rows by distance, ties by stored sequence then id.
func SequencePersisted(rows []RouteLandmark) []RouteLandmark {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b RouteLandmark) int {
		if c := cmp.Compare(a.DistanceFromStart, b.DistanceFromStart); c != 0 {
			return c
		}
		if c := cmp.Compare(a.SequenceID, b.SequenceID); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// ItineraryStop is a persisted stop as displayed: renumbered and rendered in civil time.
type ItineraryStop struct {
	RouteLandmarkID   int       `json:"route_landmark_id"`
	LandmarkID        int       `json:"landmark_id"`
	SequenceID        int       `json:"sequence_id"`
	StoredSequenceID  int       `json:"stored_sequence_id"`
	DistanceFromStart float64   `json:"distance_from_start"`
	ArrivalDelta      int64     `json:"arrival_delta"`
	DepartureDelta    int64     `json:"departure_delta"`
	Arrival           CivilTime `json:"arrival"`
	Departure         CivilTime `json:"departure"`
	ArrivalInstant    time.Time `json:"-"`
	DepartureInstant  time.Time `json:"-"`
}

type Itinerary struct {
	Route        Route           `json:"route"`
	Offset       CivilOffset     `json:"-"`
	StartInstant time.Time       `json:"-"`
	Start        CivilTime       `json:"start"`
	Stops        []ItineraryStop `json:"stops"`
}

// BuildItinerary renders persisted rows against the route's starting time.
// Sequence numbers are recomputed from distance; stored values are kept as hints.
func BuildItinerary(route Route, rows []RouteLandmark, offset CivilOffset) (Itinerary, error) {
	start, err := ParseStartingTime(route.StartingTime, offset)
	if err != nil {
		return Itinerary{}, err
	}

	ordered := SequencePersisted(rows)
	stops := make([]ItineraryStop, len(ordered))
	for i, r := range ordered {
		arr := InstantAt(start, r.ArrivalDelta)
		dep := InstantAt(start, r.DepartureDelta)
		stops[i] = ItineraryStop{
			RouteLandmarkID:   r.ID,
			LandmarkID:        r.LandmarkID,
			SequenceID:        i + 1,
			StoredSequenceID:  r.SequenceID,
			DistanceFromStart: r.DistanceFromStart,
			ArrivalDelta:      r.ArrivalDelta,
			DepartureDelta:    r.DepartureDelta,
			Arrival:           civilRelative(start, arr, offset),
			Departure:         civilRelative(start, dep, offset),
			ArrivalInstant:    arr,
			DepartureInstant:  dep,
		}
	}

	return Itinerary{
		Route:        route,
		Offset:       offset,
		StartInstant: start,
		Start:        civilRelative(start, start, offset),
		Stops:        stops,
	}, nil
}

// civilRelative renders t with its day offset counted from start's civil day.
func civilRelative(start, t time.Time, offset CivilOffset) CivilTime {
	c := FromInstant(t, offset)
	c.DayOffset = dayOffsetFrom(start, t, offset)
	return c
}
