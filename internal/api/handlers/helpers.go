package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"route-itinerary-service/internal/api/dto"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/platform/obs"
	"route-itinerary-service/internal/services"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// pathID reads a positive integer URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain and service errors onto HTTP statuses.
// Anything unrecognised came from the backend or a store and is reported as 502.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *domain.ValidationError
	var tfe *domain.TimeFormatError

	switch {
	case errors.As(err, &ve):
		writeJSON(w, r, http.StatusBadRequest, dto.ErrorResponse{Error: ve.Reason, Field: ve.Field})
	case errors.As(err, &tfe):
		writeJSON(w, r, http.StatusBadRequest, dto.ErrorResponse{Error: tfe.Error(), Field: tfe.Field})
	case errors.Is(err, domain.ErrBackendRejectedTimes):
		writeError(w, r, http.StatusUnprocessableEntity, domain.ErrBackendRejectedTimes.Error())
	case errors.Is(err, domain.ErrDraftNotFound),
		errors.Is(err, domain.ErrStopNotFound),
		errors.Is(err, domain.ErrRouteNotFound),
		errors.Is(err, domain.ErrLandmarkNotFound):
		writeError(w, r, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, services.ErrCommitInProgress), errors.Is(err, domain.ErrDraftExists):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		log.Printf("req_id=%s %s failed: %v", obs.RequestID(r.Context()), op, err)
		writeError(w, r, http.StatusBadGateway, "upstream request failed")
	}
}

func notFoundMessage(err error) string {
	for _, target := range []error{
		domain.ErrDraftNotFound,
		domain.ErrStopNotFound,
		domain.ErrRouteNotFound,
		domain.ErrLandmarkNotFound,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "not found"
}

func civilTimeFromDTO(c dto.CivilTime) domain.CivilTime {
	return domain.CivilTime{
		Hour:      c.Hour,
		Minute:    c.Minute,
		Meridiem:  domain.Meridiem(c.Meridiem),
		DayOffset: c.DayOffset,
	}
}

func optionalCivilTime(c *dto.CivilTime) *domain.CivilTime {
	if c == nil {
		return nil
	}
	t := civilTimeFromDTO(*c)
	return &t
}

func civilTimeDTO(c domain.CivilTime) dto.CivilTime {
	return dto.CivilTime{
		Hour:      c.Hour,
		Minute:    c.Minute,
		Meridiem:  string(c.Meridiem),
		DayOffset: c.DayOffset,
		Display:   c.String(),
	}
}

func stopInputFromDTO(req dto.AddStopRequest) domain.StopInput {
	return domain.StopInput{
		LandmarkID:   req.LandmarkID,
		LandmarkName: req.LandmarkName,
		Distance:     string(req.DistanceFromStart),
		Arrival:      optionalCivilTime(req.Arrival),
		Departure:    optionalCivilTime(req.Departure),
		First:        req.First,
		Terminus:     req.Terminus,
	}
}

func commitDTO(rec *domain.CommitRecord) dto.CommitResponse {
	res := dto.CommitResponse{
		ID:        rec.ID,
		DraftID:   rec.DraftID,
		RouteID:   rec.RouteID,
		RouteName: rec.RouteName,
		Status:    string(rec.Status),
		Error:     rec.Error,
		Created:   len(rec.Created()),
		Failed:    len(rec.Failed()),
		Landmarks: make([]dto.LandmarkOutcomeResponse, 0, len(rec.Landmarks)),
		CreatedAt: rec.CreatedAt,
	}
	for _, o := range rec.Landmarks {
		res.Landmarks = append(res.Landmarks, dto.LandmarkOutcomeResponse{
			LandmarkID:      o.LandmarkID,
			SequenceID:      o.SequenceID,
			RouteLandmarkID: o.RouteLandmarkID,
			Error:           o.Error,
		})
	}
	return res
}
