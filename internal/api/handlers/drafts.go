package handlers

import (
	"errors"
	"net/http"
	"route-itinerary-service/internal/api/dto"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/services"

	"github.com/go-chi/chi/v5"
)

// DraftHandler serves the new-route authoring flow.
type DraftHandler struct {
	Drafts *services.DraftService
}

func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.Drafts.Create(r.Context(), req.Name, civilTimeFromDTO(req.StartingTime))
	if err != nil {
		writeServiceError(w, r, "create draft", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, draftDTO(d))
}

func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Drafts.Get(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		writeServiceError(w, r, "get draft", err)
		return
	}

	writeJSON(w, r, http.StatusOK, draftDTO(d))
}

func (h *DraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.Drafts.Discard(r.Context(), chi.URLParam(r, "draftID")); err != nil {
		writeServiceError(w, r, "discard draft", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddStop handles a landmark selected on the map together with its dialog values.
func (h *DraftHandler) AddStop(w http.ResponseWriter, r *http.Request) {
	var req dto.AddStopRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, _, err := h.Drafts.AddStop(r.Context(), chi.URLParam(r, "draftID"), stopInputFromDTO(req))
	if err != nil {
		writeServiceError(w, r, "add stop", err)
		return
	}

	writeJSON(w, r, http.StatusOK, draftDTO(d))
}

func (h *DraftHandler) RemoveStop(w http.ResponseWriter, r *http.Request) {
	landmarkID, ok := pathID(w, r, "landmarkID")
	if !ok {
		return
	}

	d, err := h.Drafts.RemoveStop(r.Context(), chi.URLParam(r, "draftID"), landmarkID)
	if err != nil {
		writeServiceError(w, r, "remove stop", err)
		return
	}

	writeJSON(w, r, http.StatusOK, draftDTO(d))
}

// Commit persists the draft. A partially created route is reported as 502
// together with the per-landmark outcomes.
func (h *DraftHandler) Commit(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Drafts.Commit(r.Context(), chi.URLParam(r, "draftID"))
	if err == nil {
		writeJSON(w, r, http.StatusCreated, commitDTO(rec))
		return
	}

	var pe *services.PartialCommitError
	switch {
	case errors.As(err, &pe):
		res := commitDTO(rec)
		writeJSON(w, r, http.StatusBadGateway, dto.CommitErrorResponse{
			Error:  "route created but some landmarks failed",
			Commit: &res,
		})
	case rec != nil && rec.Status == domain.CommitRouteFailed:
		res := commitDTO(rec)
		writeJSON(w, r, http.StatusBadGateway, dto.CommitErrorResponse{
			Error:  "route could not be created",
			Commit: &res,
		})
	default:
		writeServiceError(w, r, "commit draft", err)
	}
}

func draftDTO(d *domain.RouteDraft) dto.DraftResponse {
	plan := d.Plan()
	res := dto.DraftResponse{
		ID:           d.ID,
		Name:         d.Name,
		StartingTime: civilTimeDTO(d.Start()),
		CivilOffset:  d.Offset.String(),
		Stops:        make([]dto.DraftStopResponse, 0, len(d.Stops)),
		Committable:  d.CheckCommittable() == nil,
		CreatedAt:    d.CreatedAt,
	}

	for i, s := range d.Stops {
		stop := dto.DraftStopResponse{
			LandmarkID:        s.LandmarkID,
			LandmarkName:      s.LandmarkName,
			SequenceID:        domain.SequenceNumber(i),
			DistanceFromStart: s.DistanceFromStart,
			Arrival:           civilTimeDTO(domain.FromInstant(s.ArrivalInstant, d.Offset)),
			Departure:         civilTimeDTO(domain.FromInstant(s.DepartureInstant, d.Offset)),
			Terminus:          s.Terminus,
		}
		if i < len(plan) && plan[i].LandmarkID == s.LandmarkID {
			stop.ArrivalDelta = plan[i].ArrivalDelta
			stop.DepartureDelta = plan[i].DepartureDelta
		}
		res.Stops = append(res.Stops, stop)
	}
	return res
}
