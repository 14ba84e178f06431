package ports

import (
	"context"
	"route-itinerary-service/internal/domain"
)

// Port: append-only record of commit attempts, so routes left partially
// populated by a failed commit can be found later.
type CommitJournal interface {
	Record(ctx context.Context, rec domain.CommitRecord) error
	// List the most recent records, newest first. An empty status matches all.
	List(ctx context.Context, status domain.CommitStatus, limit int) ([]domain.CommitRecord, error)
}

// Port: notification of finished commits to other back-office consumers.
type CommitEvents interface {
	PublishCommit(ctx context.Context, rec domain.CommitRecord) error
}
