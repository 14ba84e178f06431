package domain

import (
	"cmp"
	"slices"
	"time"
)

// DraftStop is a landmark visit in a route being authored.
// DepartureInstant is the effective departure: it equals ArrivalInstant
// while the stop is last by distance and RequestedDeparture otherwise.
type DraftStop struct {
	LandmarkID         int       `json:"landmark_id"`
	LandmarkName       string    `json:"landmark_name"`
	DistanceFromStart  float64   `json:"distance_from_start"`
	ArrivalInstant     time.Time `json:"arrival_instant"`
	DepartureInstant   time.Time `json:"departure_instant"`
	RequestedDeparture time.Time `json:"requested_departure"`
	ArrivalDayOffset   int       `json:"arrival_day_offset"`
	DepartureDayOffset int       `json:"departure_day_offset"`
	Terminus           bool      `json:"terminus,omitempty"`
}

// Sequence orders stops by distance from start. Ties keep insertion order.
// A stop's sequence number is its index plus one.
func Sequence(stops []DraftStop) []DraftStop {
	out := slices.Clone(stops)
	slices.SortStableFunc(out, func(a, b DraftStop) int {
		return cmp.Compare(a.DistanceFromStart, b.DistanceFromStart)
	})
	return out
}

// SequenceNumber converts a position in a sequenced slice into the 1-based sequence id.
func SequenceNumber(index int) int { return index + 1 }

// resequence sorts stops and reapplies the first and last stop rules.
func resequence(stops []DraftStop, start time.Time, offset CivilOffset) []DraftStop {
	out := Sequence(stops)
	for i := range out {
		s := &out[i]
		if s.DistanceFromStart == 0 {
			s.ArrivalInstant = start
			s.RequestedDeparture = start
		}
		s.DepartureInstant = s.RequestedDeparture
		if i == len(out)-1 {
			s.DepartureInstant = s.ArrivalInstant
		}
		s.ArrivalDayOffset = dayOffsetFrom(start, s.ArrivalInstant, offset)
		s.DepartureDayOffset = dayOffsetFrom(start, s.DepartureInstant, offset)
	}
	return out
}

func firstStop(stops []DraftStop) (DraftStop, bool) {
	for _, s := range stops {
		if s.DistanceFromStart == 0 {
			return s, true
		}
	}
	return DraftStop{}, false
}

func farthest(stops []DraftStop) (DraftStop, bool) {
	if len(stops) == 0 {
		return DraftStop{}, false
	}
	f := stops[0]
	for _, s := range stops[1:] {
		if s.DistanceFromStart >= f.DistanceFromStart {
			f = s
		}
	}
	return f, true
}

func terminus(stops []DraftStop) (DraftStop, bool) {
	for _, s := range stops {
		if s.Terminus {
			return s, true
		}
	}
	return DraftStop{}, false
}

// stopsFromRows rebuilds draft-shaped stops from persisted rows so the same
// rules can validate an append against an existing route.
func stopsFromRows(start time.Time, rows []RouteLandmark) []DraftStop {
	out := make([]DraftStop, 0, len(rows))
	for _, r := range SequencePersisted(rows) {
		arr := InstantAt(start, r.ArrivalDelta)
		dep := InstantAt(start, r.DepartureDelta)
		out = append(out, DraftStop{
			LandmarkID:         r.LandmarkID,
			DistanceFromStart:  r.DistanceFromStart,
			ArrivalInstant:     arr,
			DepartureInstant:   dep,
			RequestedDeparture: dep,
		})
	}
	return out
}
