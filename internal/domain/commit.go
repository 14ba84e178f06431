package domain

import "time"

type CommitStatus string

const (
	CommitSucceeded   CommitStatus = "success"
	CommitPartial     CommitStatus = "partial"
	CommitRouteFailed CommitStatus = "route_failed"
)

// LandmarkOutcome is the result of one landmark create within a commit.
// RouteLandmarkID is zero when the create failed.
type LandmarkOutcome struct {
	LandmarkID      int    `json:"landmark_id"`
	SequenceID      int    `json:"sequence_id"`
	RouteLandmarkID int    `json:"route_landmark_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

func (o LandmarkOutcome) Succeeded() bool { return o.Error == "" }

// CommitRecord describes one commit attempt, successful or not.
type CommitRecord struct {
	ID        string            `json:"id"`
	DraftID   string            `json:"draft_id"`
	RouteID   int               `json:"route_id,omitempty"`
	RouteName string            `json:"route_name"`
	Status    CommitStatus      `json:"status"`
	Error     string            `json:"error,omitempty"`
	Landmarks []LandmarkOutcome `json:"landmarks"`
	CreatedAt time.Time         `json:"created_at"`
}

// Created returns the outcomes whose landmark was persisted.
func (r *CommitRecord) Created() []LandmarkOutcome {
	var out []LandmarkOutcome
	for _, o := range r.Landmarks {
		if o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

func (r *CommitRecord) Failed() []LandmarkOutcome {
	var out []LandmarkOutcome
	for _, o := range r.Landmarks {
		if !o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}
