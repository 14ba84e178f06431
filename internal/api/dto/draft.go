package dto

import "time"

type CreateDraftRequest struct {
	Name         string    `json:"name"`
	StartingTime CivilTime `json:"starting_time"`
}

// AddStopRequest is a landmark picked on the map plus the stop dialog's values.
type AddStopRequest struct {
	LandmarkID        int        `json:"landmark_id"`
	LandmarkName      string     `json:"landmark_name"`
	DistanceFromStart NumberText `json:"distance_from_start"`
	Arrival           *CivilTime `json:"arrival"`
	Departure         *CivilTime `json:"departure"`
	First             bool       `json:"first"`
	Terminus          bool       `json:"terminus"`
}

type DraftStopResponse struct {
	LandmarkID        int       `json:"landmark_id"`
	LandmarkName      string    `json:"landmark_name,omitempty"`
	SequenceID        int       `json:"sequence_id"`
	DistanceFromStart float64   `json:"distance_from_start"`
	Arrival           CivilTime `json:"arrival"`
	Departure         CivilTime `json:"departure"`
	ArrivalDelta      int64     `json:"arrival_delta"`
	DepartureDelta    int64     `json:"departure_delta"`
	Terminus          bool      `json:"terminus,omitempty"`
}

type DraftResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	StartingTime CivilTime           `json:"starting_time"`
	CivilOffset  string              `json:"civil_offset"`
	Stops        []DraftStopResponse `json:"stops"`
	Committable  bool                `json:"committable"`
	CreatedAt    time.Time           `json:"created_at"`
}
