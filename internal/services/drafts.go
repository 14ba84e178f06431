package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/platform/obs"
	"route-itinerary-service/internal/ports"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCommitInProgress is returned when a draft is already being committed.
var ErrCommitInProgress = errors.New("draft commit already in progress")

// DraftService runs the new-route authoring flow: a draft is built stop by
// stop in the repository and turned into backend writes by the Committer.
type DraftService struct {
	Repo      ports.DraftRepository
	Committer *Committer
	Offset    domain.CivilOffset
	NewID     func() string

	inflight sync.Map
}

func NewDraftService(repo ports.DraftRepository, committer *Committer, offset domain.CivilOffset) *DraftService {
	return &DraftService{
		Repo:      repo,
		Committer: committer,
		Offset:    offset,
		NewID:     uuid.NewString,
	}
}

func (s *DraftService) Create(ctx context.Context, name string, start domain.CivilTime) (_ *domain.RouteDraft, err error) {
	defer obs.Time(ctx, "drafts.Create")(&err)

	d, err := domain.NewRouteDraft(s.NewID(), name, start, s.Offset)
	if err != nil {
		return nil, err
	}
	d.CreatedAt = time.Now().UTC()

	if err := s.Repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return d, nil
}

func (s *DraftService) Get(ctx context.Context, id string) (*domain.RouteDraft, error) {
	d, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get draft %s: %w", id, err)
	}
	return d, nil
}

// AddStop validates and inserts a stop. The stored draft is unchanged on error.
func (s *DraftService) AddStop(
	ctx context.Context,
	id string,
	in domain.StopInput,
) (_ *domain.RouteDraft, _ domain.DraftStop, err error) {
	defer obs.Time(ctx, "drafts.AddStop")(&err)

	var added domain.DraftStop
	d, err := s.Repo.Update(ctx, id, func(d *domain.RouteDraft) error {
		if s.committing(id) {
			return ErrCommitInProgress
		}
		stop, err := d.AddStop(in)
		added = stop
		return err
	})
	if err != nil {
		return nil, domain.DraftStop{}, fmt.Errorf("add stop to draft %s: %w", id, err)
	}
	return d, added, nil
}

func (s *DraftService) RemoveStop(ctx context.Context, id string, landmarkID int) (_ *domain.RouteDraft, err error) {
	defer obs.Time(ctx, "drafts.RemoveStop")(&err)

	d, err := s.Repo.Update(ctx, id, func(d *domain.RouteDraft) error {
		if s.committing(id) {
			return ErrCommitInProgress
		}
		return d.RemoveStop(landmarkID)
	})
	if err != nil {
		return nil, fmt.Errorf("remove stop from draft %s: %w", id, err)
	}
	return d, nil
}

// Discard drops a draft without touching the backend.
func (s *DraftService) Discard(ctx context.Context, id string) error {
	if s.committing(id) {
		return fmt.Errorf("discard draft %s: %w", id, ErrCommitInProgress)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("discard draft %s: %w", id, err)
	}
	return nil
}

// Commit persists a draft. The draft is discarded only when every write
// succeeded; after a partial commit it is kept so the operator can see
// what was intended.
func (s *DraftService) Commit(ctx context.Context, id string) (_ *domain.CommitRecord, err error) {
	defer obs.Time(ctx, "drafts.Commit")(&err)

	if _, busy := s.inflight.LoadOrStore(id, struct{}{}); busy {
		return nil, fmt.Errorf("commit draft %s: %w", id, ErrCommitInProgress)
	}
	defer s.inflight.Delete(id)

	d, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("commit draft %s: %w", id, err)
	}

	rec, err := s.Committer.Commit(ctx, d)
	if err != nil {
		return rec, err
	}

	if err := s.Repo.Delete(context.WithoutCancel(ctx), id); err != nil && !errors.Is(err, domain.ErrDraftNotFound) {
		log.Printf("req_id=%s committed draft not discarded draft=%s route_id=%d: %v", obs.RequestID(ctx), id, rec.RouteID, err)
	}
	return rec, nil
}

// committing reports whether id is being committed. Edits are refused while
// it is, since the commit works from a snapshot and deletes the draft after.
func (s *DraftService) committing(id string) bool {
	_, busy := s.inflight.Load(id)
	return busy
}
