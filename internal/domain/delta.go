package domain

import "time"

// Delta is the whole-second offset of stop from start, the unit the backend stores.
// A stop at or before the start collapses to 0; ordering errors are caught earlier.
func Delta(start, stop time.Time) int64 {
	secs := stop.Sub(start).Milliseconds()
	d := floorDiv(secs, 1000)
	if d < 0 {
		return 0
	}
	return d
}

// StopDeltas returns the arrival and departure deltas of a stop.
func StopDeltas(start, arrival, departure time.Time) (arrivalDelta, departureDelta int64) {
	return Delta(start, arrival), Delta(start, departure)
}

// InstantAt is the absolute instant delta seconds after start.
func InstantAt(start time.Time, delta int64) time.Time {
	return start.Add(time.Duration(delta) * time.Second)
}
