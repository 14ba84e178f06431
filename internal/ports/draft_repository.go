package ports

import (
	"context"
	"route-itinerary-service/internal/domain"
)

// Port: per-session storage for drafts that have not been committed.
type DraftRepository interface {
	Create(ctx context.Context, draft *domain.RouteDraft) error
	// Get returns domain.ErrDraftNotFound for unknown or expired drafts.
	Get(ctx context.Context, id string) (*domain.RouteDraft, error)
	// Update applies fn to the stored draft and saves it only when fn succeeds.
	Update(ctx context.Context, id string, fn func(*domain.RouteDraft) error) (*domain.RouteDraft, error)
	Delete(ctx context.Context, id string) error
}
