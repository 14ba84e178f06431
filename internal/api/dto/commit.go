package dto

import "time"

type LandmarkOutcomeResponse struct {
	LandmarkID      int    `json:"landmark_id"`
	SequenceID      int    `json:"sequence_id"`
	RouteLandmarkID int    `json:"route_landmark_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

type CommitResponse struct {
	ID        string                    `json:"id"`
	DraftID   string                    `json:"draft_id"`
	RouteID   int                       `json:"route_id,omitempty"`
	RouteName string                    `json:"route_name"`
	Status    string                    `json:"status"`
	Error     string                    `json:"error,omitempty"`
	Created   int                       `json:"created"`
	Failed    int                       `json:"failed"`
	Landmarks []LandmarkOutcomeResponse `json:"landmarks"`
	CreatedAt time.Time                 `json:"created_at"`
}

// CommitErrorResponse is returned when a commit did not fully succeed.
// Commit is set whenever a route was attempted.
type CommitErrorResponse struct {
	Error  string          `json:"error"`
	Commit *CommitResponse `json:"commit,omitempty"`
}

type ListCommitsResponse struct {
	Commits []CommitResponse `json:"commits"`
}
