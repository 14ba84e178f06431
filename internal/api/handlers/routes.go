package handlers

import (
	"net/http"
	"route-itinerary-service/internal/adapters/export"
	"route-itinerary-service/internal/api/dto"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/services"
	"strconv"
	"time"
)

// RouteHandler serves reads and edits of routes already on the backend.
type RouteHandler struct {
	Routes *services.Committer
}

func (h *RouteHandler) Itinerary(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathID(w, r, "routeID")
	if !ok {
		return
	}

	it, err := h.Routes.Itinerary(r.Context(), routeID)
	if err != nil {
		writeServiceError(w, r, "read itinerary", err)
		return
	}

	res := dto.ItineraryResponse{
		Route:        routeDTO(it.Route),
		StartingTime: civilTimeDTO(it.Start),
		CivilOffset:  it.Offset.String(),
		Stops:        make([]dto.ItineraryStopResponse, 0, len(it.Stops)),
	}
	for _, s := range it.Stops {
		res.Stops = append(res.Stops, dto.ItineraryStopResponse{
			RouteLandmarkID:   s.RouteLandmarkID,
			LandmarkID:        s.LandmarkID,
			SequenceID:        s.SequenceID,
			StoredSequenceID:  s.StoredSequenceID,
			DistanceFromStart: s.DistanceFromStart,
			ArrivalDelta:      s.ArrivalDelta,
			DepartureDelta:    s.DepartureDelta,
			Arrival:           civilTimeDTO(s.Arrival),
			Departure:         civilTimeDTO(s.Departure),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// ItineraryICS exports the itinerary as a calendar for one service date.
// The date defaults to today in the civil offset.
func (h *RouteHandler) ItineraryICS(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathID(w, r, "routeID")
	if !ok {
		return
	}

	it, err := h.Routes.Itinerary(r.Context(), routeID)
	if err != nil {
		writeServiceError(w, r, "export itinerary", err)
		return
	}

	date := time.Now().UTC().Add(time.Duration(it.Offset))
	if v := r.URL.Query().Get("date"); v != "" {
		date, err = time.Parse(time.DateOnly, v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=route-"+strconv.Itoa(routeID)+".ics")
	if err := export.WriteItineraryICS(it, date, w); err != nil {
		writeServiceError(w, r, "export itinerary", err)
	}
}

func (h *RouteHandler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathID(w, r, "routeID")
	if !ok {
		return
	}

	var req dto.UpdateRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	route, err := h.Routes.UpdateRoute(r.Context(), routeID, req.Name, optionalCivilTime(req.StartingTime))
	if err != nil {
		writeServiceError(w, r, "update route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, routeDTO(route))
}

// AppendLandmark adds a stop to an existing route.
func (h *RouteHandler) AppendLandmark(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathID(w, r, "routeID")
	if !ok {
		return
	}

	var req dto.AddStopRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rl, err := h.Routes.Append(r.Context(), routeID, stopInputFromDTO(req))
	if err != nil {
		writeServiceError(w, r, "append landmark", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.RouteLandmarkResponse{
		ID:                rl.ID,
		RouteID:           rl.RouteID,
		LandmarkID:        rl.LandmarkID,
		SequenceID:        rl.SequenceID,
		DistanceFromStart: rl.DistanceFromStart,
		ArrivalDelta:      rl.ArrivalDelta,
		DepartureDelta:    rl.DepartureDelta,
	})
}

func (h *RouteHandler) UpdateLandmark(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathID(w, r, "routeID")
	if !ok {
		return
	}
	rlID, ok := pathID(w, r, "routeLandmarkID")
	if !ok {
		return
	}

	var req dto.UpdateLandmarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.Routes.Update(r.Context(), routeID, services.LandmarkEdit{
		RouteLandmarkID:   rlID,
		Arrival:           req.Arrival,
		ArrivalDay:        req.ArrivalDay,
		Departure:         req.Departure,
		DepartureDay:      req.DepartureDay,
		DistanceFromStart: req.DistanceFromStart,
	})
	if err != nil {
		writeServiceError(w, r, "update landmark", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.UpdateLandmarkResponse{
		ID:                u.ID,
		ArrivalDelta:      u.ArrivalDelta,
		DepartureDelta:    u.DepartureDelta,
		DistanceFromStart: u.DistanceFromStart,
	})
}

func (h *RouteHandler) DeleteLandmark(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathID(w, r, "routeID")
	if !ok {
		return
	}
	rlID, ok := pathID(w, r, "routeLandmarkID")
	if !ok {
		return
	}

	if err := h.Routes.DeleteLandmark(r.Context(), routeID, rlID); err != nil {
		writeServiceError(w, r, "delete landmark", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func routeDTO(r domain.Route) dto.RouteResponse {
	return dto.RouteResponse{ID: r.ID, Name: r.Name, StartingTime: r.StartingTime}
}
