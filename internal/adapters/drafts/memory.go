package drafts

import (
	"context"
	"fmt"
	"route-itinerary-service/internal/domain"
	"slices"
	"sync"
)

// MemoryDraftRepository keeps drafts in process memory. Callers always
// receive copies, so a draft is only changed through Update.
type MemoryDraftRepository struct {
	mu     sync.Mutex
	drafts map[string]*domain.RouteDraft
}

func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{drafts: make(map[string]*domain.RouteDraft)}
}

func (r *MemoryDraftRepository) Create(ctx context.Context, d *domain.RouteDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drafts[d.ID]; ok {
		return fmt.Errorf("create draft %q: %w", d.ID, domain.ErrDraftExists)
	}
	r.drafts[d.ID] = clone(d)
	return nil
}

func (r *MemoryDraftRepository) Get(ctx context.Context, id string) (*domain.RouteDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drafts[id]
	if !ok {
		return nil, fmt.Errorf("get draft %q: %w", id, domain.ErrDraftNotFound)
	}
	return clone(d), nil
}

func (r *MemoryDraftRepository) Update(
	ctx context.Context,
	id string,
	fn func(*domain.RouteDraft) error,
) (*domain.RouteDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drafts[id]
	if !ok {
		return nil, fmt.Errorf("update draft %q: %w", id, domain.ErrDraftNotFound)
	}

	work := clone(d)
	if err := fn(work); err != nil {
		return nil, err
	}
	r.drafts[id] = work
	return clone(work), nil
}

func (r *MemoryDraftRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drafts[id]; !ok {
		return fmt.Errorf("delete draft %q: %w", id, domain.ErrDraftNotFound)
	}
	delete(r.drafts, id)
	return nil
}

func clone(d *domain.RouteDraft) *domain.RouteDraft {
	c := *d
	c.Stops = slices.Clone(d.Stops)
	return &c
}
