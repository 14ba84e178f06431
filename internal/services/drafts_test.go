package services

import (
	"context"
	"errors"
	"route-itinerary-service/internal/adapters/backend"
	"route-itinerary-service/internal/adapters/drafts"
	"route-itinerary-service/internal/domain"
	"testing"
)

func newDraftService(h *harness) *DraftService {
	svc := NewDraftService(drafts.NewMemoryDraftRepository(), h.committer, domain.DefaultCivilOffset)
	svc.NewID = func() string { return "draft-1" }
	return svc
}

func authorThreeStops(t *testing.T, svc *DraftService) *domain.RouteDraft {
	t.Helper()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Route 9", *at(6, 0, domain.AM)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	inputs := []domain.StopInput{
		{LandmarkID: 1, Distance: "0", First: true},
		{LandmarkID: 3, Distance: "8000", Arrival: at(8, 0, domain.AM)},
		{LandmarkID: 2, Distance: "5000", Arrival: at(7, 15, domain.AM), Departure: at(7, 20, domain.AM)},
	}
	var d *domain.RouteDraft
	for _, in := range inputs {
		var err error
		d, _, err = svc.AddStop(ctx, "draft-1", in)
		if err != nil {
			t.Fatalf("AddStop(%d): %v", in.LandmarkID, err)
		}
	}
	return d
}

func TestDraftServiceCommitDiscardsDraft(t *testing.T) {
	h := newHarness()
	svc := newDraftService(h)
	ctx := context.Background()

	d := authorThreeStops(t, svc)
	if d.Stops[0].LandmarkID != 1 || d.Stops[2].LandmarkID != 3 {
		t.Fatalf("stops not ordered by distance: %+v", d.Stops)
	}

	rec, err := svc.Commit(ctx, "draft-1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if rec.DraftID != "draft-1" || len(rec.Created()) != 3 {
		t.Fatalf("record = %+v", rec)
	}
	if _, err := svc.Get(ctx, "draft-1"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("draft should be discarded, got %v", err)
	}
}

func TestDraftServiceKeepsDraftAfterPartialCommit(t *testing.T) {
	h := newHarness()
	svc := newDraftService(h)
	authorThreeStops(t, svc)
	h.backend.FailLandmark(3, &backend.StatusError{Code: 500, Body: "boom"})

	_, err := svc.Commit(context.Background(), "draft-1")
	var pe *PartialCommitError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PartialCommitError, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "draft-1"); err != nil {
		t.Fatalf("draft should be kept after a partial commit: %v", err)
	}
}

func TestDraftServiceRejectedStopLeavesDraftUnchanged(t *testing.T) {
	h := newHarness()
	svc := newDraftService(h)
	ctx := context.Background()
	authorThreeStops(t, svc)

	_, _, err := svc.AddStop(ctx, "draft-1", domain.StopInput{
		LandmarkID: 4,
		Distance:   "6000",
		Arrival:    at(7, 15, domain.AM),
		Departure:  at(7, 40, domain.AM),
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Reason != domain.MsgTimeAlreadyUsed {
		t.Fatalf("expected duplicate time error, got %v", err)
	}

	d, _ := svc.Get(ctx, "draft-1")
	if len(d.Stops) != 3 {
		t.Fatalf("stops = %d, want 3", len(d.Stops))
	}

	d, err = svc.RemoveStop(ctx, "draft-1", 2)
	if err != nil {
		t.Fatalf("RemoveStop: %v", err)
	}
	if len(d.Stops) != 2 {
		t.Fatalf("stops after remove = %d", len(d.Stops))
	}
	if n := h.backend.LandmarkCreates(); n != 0 {
		t.Fatalf("draft edits reached the backend: %d", n)
	}
}

func TestDraftServiceCommitInProgress(t *testing.T) {
	h := newHarness()
	svc := newDraftService(h)
	authorThreeStops(t, svc)

	svc.inflight.Store("draft-1", struct{}{})
	if _, err := svc.Commit(context.Background(), "draft-1"); !errors.Is(err, ErrCommitInProgress) {
		t.Fatalf("expected ErrCommitInProgress, got %v", err)
	}
	if n := h.backend.LandmarkCreates(); n != 0 {
		t.Fatalf("landmark creates = %d", n)
	}
}

func TestDraftServiceUnknownDraft(t *testing.T) {
	svc := newDraftService(newHarness())
	ctx := context.Background()

	if _, err := svc.Commit(ctx, "missing"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("Commit: expected ErrDraftNotFound, got %v", err)
	}
	if err := svc.Discard(ctx, "missing"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("Discard: expected ErrDraftNotFound, got %v", err)
	}
}

// gatedBackend holds landmark creates until release is closed.
type gatedBackend struct {
	*backend.MemoryBackend
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBackend) CreateRouteLandmark(
	ctx context.Context,
	routeID int,
	plan domain.LandmarkPlan,
) (domain.RouteLandmark, error) {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return g.MemoryBackend.CreateRouteLandmark(ctx, routeID, plan)
}

func TestDraftServiceRefusesEditsDuringCommit(t *testing.T) {
	h := newHarness()
	gate := &gatedBackend{MemoryBackend: h.backend, entered: make(chan struct{}, 3), release: make(chan struct{})}
	h.committer.Backend = gate
	svc := newDraftService(h)
	authorThreeStops(t, svc)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Commit(ctx, "draft-1")
		done <- err
	}()
	<-gate.entered

	_, _, err := svc.AddStop(ctx, "draft-1", domain.StopInput{LandmarkID: 4, Distance: "9000", Arrival: at(8, 30, domain.AM)})
	if !errors.Is(err, ErrCommitInProgress) {
		t.Fatalf("AddStop during commit: expected ErrCommitInProgress, got %v", err)
	}
	if _, err := svc.RemoveStop(ctx, "draft-1", 2); !errors.Is(err, ErrCommitInProgress) {
		t.Fatalf("RemoveStop during commit: expected ErrCommitInProgress, got %v", err)
	}
	if err := svc.Discard(ctx, "draft-1"); !errors.Is(err, ErrCommitInProgress) {
		t.Fatalf("Discard during commit: expected ErrCommitInProgress, got %v", err)
	}

	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if n := h.backend.LandmarkCreates(); n != 3 {
		t.Fatalf("landmark creates = %d, want 3", n)
	}
	if _, err := svc.Get(ctx, "draft-1"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("draft should be discarded, got %v", err)
	}
}
