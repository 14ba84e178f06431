package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RouteDraft is the unpersisted working set of a route being authored.
// Stops are kept sorted by distance from start after every mutation.
type RouteDraft struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	StartInstant time.Time   `json:"start_instant"`
	Offset       CivilOffset `json:"offset"`
	Stops        []DraftStop `json:"stops"`
	CreatedAt    time.Time   `json:"created_at"`
}

// StopInput is the landmark-selection event plus the operator's dialog values.
// Distance is kept as typed so missing and non-numeric input can be told apart.
type StopInput struct {
	LandmarkID   int
	LandmarkName string
	Distance     string
	Arrival      *CivilTime
	Departure    *CivilTime
	First        bool
	Terminus     bool
}

func NewRouteDraft(id, name string, start CivilTime, offset CivilOffset) (*RouteDraft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "route name is required")
	}
	start.DayOffset = 0
	if err := start.Validate(); err != nil {
		return nil, invalid("starting_time", err.Error())
	}

	return &RouteDraft{
		ID:           id,
		Name:         name,
		StartInstant: StartInstant(start, offset),
		Offset:       offset,
	}, nil
}

// Start is the route's starting time in civil form.
func (d *RouteDraft) Start() CivilTime {
	return civilRelative(d.StartInstant, d.StartInstant, d.Offset)
}

// AddStop validates a candidate stop and inserts it. Nothing is changed on error.
func (d *RouteDraft) AddStop(in StopInput) (DraftStop, error) {
	rules := stopRules{
		start:       d.StartInstant,
		offset:      d.Offset,
		existing:    d.Stops,
		uniqueTimes: true,
	}
	stop, err := rules.build(in)
	if err != nil {
		return DraftStop{}, err
	}

	d.Stops = resequence(append(d.Stops, stop), d.StartInstant, d.Offset)
	for _, s := range d.Stops {
		if s.LandmarkID == stop.LandmarkID {
			return s, nil
		}
	}
	return stop, nil
}

// RemoveStop drops a stop from the draft and re-sequences the rest.
func (d *RouteDraft) RemoveStop(landmarkID int) error {
	for i, s := range d.Stops {
		if s.LandmarkID != landmarkID {
			continue
		}
		rest := append(d.Stops[:i:i], d.Stops[i+1:]...)
		d.Stops = resequence(rest, d.StartInstant, d.Offset)
		return nil
	}
	return fmt.Errorf("remove landmark %d: %w", landmarkID, ErrStopNotFound)
}

// Plan computes the landmark creates of a commit. It does not mutate the draft,
// so calling it twice yields identical plans.
func (d *RouteDraft) Plan() []LandmarkPlan {
	stops := resequence(d.Stops, d.StartInstant, d.Offset)
	plan := make([]LandmarkPlan, len(stops))
	for i, s := range stops {
		arr, dep := StopDeltas(d.StartInstant, s.ArrivalInstant, s.DepartureInstant)
		plan[i] = LandmarkPlan{
			LandmarkID:        s.LandmarkID,
			LandmarkName:      s.LandmarkName,
			SequenceID:        SequenceNumber(i),
			DistanceFromStart: s.DistanceFromStart,
			ArrivalDelta:      arr,
			DepartureDelta:    dep,
		}
	}
	return plan
}

// CheckCommittable reports why the draft cannot be committed yet.
func (d *RouteDraft) CheckCommittable() error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("name", "route name is required")
	}
	if len(d.Stops) < 2 {
		return invalid("stops", "a route needs a starting landmark and at least one more stop")
	}
	if _, ok := firstStop(d.Stops); !ok {
		return invalid("stops", "a route needs a starting landmark at distance 0")
	}
	return nil
}

// ParseDistance reads the operator's distance-from-start field in meters.
func ParseDistance(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalid("distance_from_start", "distance from start is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid("distance_from_start", "distance from start must be a number")
	}
	return v, nil
}

// PrepareAppend validates a single stop against an already persisted route
// and plans its create. Duplicate times are not rejected on this path.
func PrepareAppend(start time.Time, offset CivilOffset, rows []RouteLandmark, in StopInput) (LandmarkPlan, error) {
	existing := stopsFromRows(start, rows)
	rules := stopRules{start: start, offset: offset, existing: existing}
	stop, err := rules.build(in)
	if err != nil {
		return LandmarkPlan{}, err
	}

	all := Sequence(append(existing, stop))
	pos := len(all) - 1
	for i, s := range all {
		if s.LandmarkID == stop.LandmarkID {
			pos = i
			break
		}
	}

	dep := stop.RequestedDeparture
	if pos == len(all)-1 {
		dep = stop.ArrivalInstant
	}
	arrDelta, depDelta := StopDeltas(start, stop.ArrivalInstant, dep)

	return LandmarkPlan{
		LandmarkID:        stop.LandmarkID,
		LandmarkName:      stop.LandmarkName,
		SequenceID:        SequenceNumber(pos),
		DistanceFromStart: stop.DistanceFromStart,
		ArrivalDelta:      arrDelta,
		DepartureDelta:    depDelta,
	}, nil
}

type stopRules struct {
	start       time.Time
	offset      CivilOffset
	existing    []DraftStop
	uniqueTimes bool
}

func (r stopRules) build(in StopInput) (DraftStop, error) {
	if in.LandmarkID <= 0 {
		return DraftStop{}, invalid("landmark_id", "landmark is required")
	}
	for _, s := range r.existing {
		if s.LandmarkID == in.LandmarkID {
			return DraftStop{}, invalid("landmark_id", fmt.Sprintf("landmark %d is already on this route", in.LandmarkID))
		}
	}

	dist, distErr := ParseDistance(in.Distance)
	if in.First || len(r.existing) == 0 || (distErr == nil && dist == 0) {
		if f, ok := firstStop(r.existing); ok {
			return DraftStop{}, invalid("landmark_id", fmt.Sprintf("route already starts at landmark %d", f.LandmarkID))
		}
		return DraftStop{
			LandmarkID:         in.LandmarkID,
			LandmarkName:       in.LandmarkName,
			ArrivalInstant:     r.start,
			DepartureInstant:   r.start,
			RequestedDeparture: r.start,
		}, nil
	}

	if in.Arrival == nil {
		return DraftStop{}, invalid("arrival", "arrival time is required")
	}
	if err := in.Arrival.Validate(); err != nil {
		return DraftStop{}, invalid("arrival", err.Error())
	}

	far, hasFar := farthest(r.existing)
	last := in.Terminus || (distErr == nil && (!hasFar || dist >= far.DistanceFromStart))

	depTime := in.Departure
	if depTime == nil {
		if !last {
			return DraftStop{}, invalid("departure", "departure time is required")
		}
		depTime = in.Arrival
	} else if err := depTime.Validate(); err != nil {
		return DraftStop{}, invalid("departure", err.Error())
	}

	arrival := ToInstant(*in.Arrival, r.offset)
	departure := ToInstant(*depTime, r.offset)
	if departure.Before(arrival) {
		if !last {
			return DraftStop{}, invalid("departure", MsgDepartureBeforeArr)
		}
		departure = arrival
	}
	if !arrival.After(r.start) {
		return DraftStop{}, invalid("arrival", MsgArrivalNotAfterStart)
	}

	if r.uniqueTimes {
		for _, s := range r.existing {
			for _, t := range []time.Time{s.ArrivalInstant, s.DepartureInstant, s.RequestedDeparture} {
				if t.Equal(arrival) {
					return DraftStop{}, invalid("arrival", MsgTimeAlreadyUsed)
				}
				if t.Equal(departure) {
					return DraftStop{}, invalid("departure", MsgTimeAlreadyUsed)
				}
			}
		}
	}

	if distErr != nil {
		return DraftStop{}, distErr
	}
	if dist <= 0 {
		return DraftStop{}, invalid("distance_from_start", "distance from start must be greater than zero")
	}
	if t, ok := terminus(r.existing); ok && dist > t.DistanceFromStart {
		return DraftStop{}, invalid("distance_from_start", fmt.Sprintf("landmark lies beyond the terminus at %.0f m", t.DistanceFromStart))
	}
	if in.Terminus && hasFar && dist < far.DistanceFromStart {
		return DraftStop{}, invalid("terminus", "the terminus must be the farthest landmark")
	}

	return DraftStop{
		LandmarkID:         in.LandmarkID,
		LandmarkName:       in.LandmarkName,
		DistanceFromStart:  dist,
		ArrivalInstant:     arrival,
		DepartureInstant:   departure,
		RequestedDeparture: departure,
		Terminus:           in.Terminus,
	}, nil
}
