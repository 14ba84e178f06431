package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrDraftExists      = errors.New("draft already exists")
	ErrStopNotFound     = errors.New("stop not found in draft")
	ErrRouteNotFound    = errors.New("route not found")
	ErrLandmarkNotFound = errors.New("route landmark not found")

	// ErrUnprocessable is reported by the backend adapter for HTTP 422.
	ErrUnprocessable = errors.New("backend rejected the request")

	// ErrBackendRejectedTimes is the operator-facing meaning of a 422 on a landmark write.
	ErrBackendRejectedTimes = errors.New("arrival/departure must be after starting time")
)

// ValidationError blocks a draft or edit operation before any network I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TimeFormatError reports a starting, arrival or departure string that cannot be parsed.
type TimeFormatError struct {
	Field string
	Value string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("Invalid %s time format", e.Field)
}

// Validation messages shared by the draft store and the edit paths.
const (
	MsgTimeAlreadyUsed      = "time already used by another landmark"
	MsgDepartureBeforeArr   = "departure time must not be before arrival time"
	MsgArrivalNotAfterStart = "arrival time must be after the route starting time"
)
