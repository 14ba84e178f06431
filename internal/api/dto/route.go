package dto

type RouteResponse struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	StartingTime string `json:"starting_time"`
}

type UpdateRouteRequest struct {
	Name         string     `json:"name"`
	StartingTime *CivilTime `json:"starting_time"`
}

type ItineraryStopResponse struct {
	RouteLandmarkID   int       `json:"route_landmark_id"`
	LandmarkID        int       `json:"landmark_id"`
	SequenceID        int       `json:"sequence_id"`
	StoredSequenceID  int       `json:"stored_sequence_id"`
	DistanceFromStart float64   `json:"distance_from_start"`
	ArrivalDelta      int64     `json:"arrival_delta"`
	DepartureDelta    int64     `json:"departure_delta"`
	Arrival           CivilTime `json:"arrival"`
	Departure         CivilTime `json:"departure"`
}

type ItineraryResponse struct {
	Route        RouteResponse           `json:"route"`
	StartingTime CivilTime               `json:"start"`
	CivilOffset  string                  `json:"civil_offset"`
	Stops        []ItineraryStopResponse `json:"stops"`
}

type RouteLandmarkResponse struct {
	ID                int     `json:"id"`
	RouteID           int     `json:"route_id"`
	LandmarkID        int     `json:"landmark_id"`
	SequenceID        int     `json:"sequence_id"`
	DistanceFromStart float64 `json:"distance_from_start"`
	ArrivalDelta      int64   `json:"arrival_delta"`
	DepartureDelta    int64   `json:"departure_delta"`
}

// UpdateLandmarkRequest carries the edit form's raw time strings, e.g. "07:15 PM".
type UpdateLandmarkRequest struct {
	Arrival           string   `json:"arrival"`
	ArrivalDay        int      `json:"arrival_day"`
	Departure         string   `json:"departure"`
	DepartureDay      int      `json:"departure_day"`
	DistanceFromStart *float64 `json:"distance_from_start"`
}

type UpdateLandmarkResponse struct {
	ID                int      `json:"id"`
	ArrivalDelta      int64    `json:"arrival_delta"`
	DepartureDelta    int64    `json:"departure_delta"`
	DistanceFromStart *float64 `json:"distance_from_start,omitempty"`
}
