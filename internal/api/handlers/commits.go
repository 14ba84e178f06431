package handlers

import (
	"net/http"
	"route-itinerary-service/internal/api/dto"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/ports"
	"strconv"
)

// CommitHandler lists journaled commit attempts, e.g. partial commits
// whose routes need manual cleanup.
type CommitHandler struct {
	Journal ports.CommitJournal
}

func (h *CommitHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := domain.CommitStatus(q.Get("status"))
	switch status {
	case "", domain.CommitSucceeded, domain.CommitPartial, domain.CommitRouteFailed:
	default:
		writeError(w, r, http.StatusBadRequest, "status must be one of success, partial, route_failed")
		return
	}

	limit := 50
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	recs, err := h.Journal.List(r.Context(), status, limit)
	if err != nil {
		writeServiceError(w, r, "list commits", err)
		return
	}

	res := dto.ListCommitsResponse{Commits: make([]dto.CommitResponse, 0, len(recs))}
	for i := range recs {
		res.Commits = append(res.Commits, commitDTO(&recs[i]))
	}

	writeJSON(w, r, http.StatusOK, res)
}
