package journal

import (
	"context"
	"errors"
	"route-itinerary-service/internal/domain"
	"slices"
	"sync"
)

// MemoryCommitJournal keeps commit records for the life of the process.
type MemoryCommitJournal struct {
	mu      sync.Mutex
	records []domain.CommitRecord
}

func NewMemoryCommitJournal() *MemoryCommitJournal {
	return &MemoryCommitJournal{}
}

func (j *MemoryCommitJournal) Record(ctx context.Context, rec domain.CommitRecord) error {
	if rec.ID == "" {
		return errors.New("record commit: commit id is required")
	}

	rec.Landmarks = slices.Clone(rec.Landmarks)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return nil
}

func (j *MemoryCommitJournal) List(
	ctx context.Context,
	status domain.CommitStatus,
	limit int,
) ([]domain.CommitRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var out []domain.CommitRecord
	for i := len(j.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := j.records[i]
		if status != "" && r.Status != status {
			continue
		}
		r.Landmarks = slices.Clone(r.Landmarks)
		out = append(out, r)
	}
	return out, nil
}
