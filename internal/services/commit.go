package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/platform/obs"
	"route-itinerary-service/internal/ports"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CommitMetrics is satisfied by the prometheus collector.
type CommitMetrics interface {
	ObserveCommit(status string)
	ObserveLandmarkWrite(op string, err error)
}

// Committer translates drafts and single-stop edits into backend writes.
// Journal, Events and Metrics are optional.
type Committer struct {
	Backend ports.RouteBackend
	Journal ports.CommitJournal
	Events  ports.CommitEvents
	Metrics CommitMetrics
	Offset  domain.CivilOffset

	now func() time.Time
}

func NewCommitter(backend ports.RouteBackend, offset domain.CivilOffset) *Committer {
	return &Committer{Backend: backend, Offset: offset, now: time.Now}
}

// PartialCommitError reports a route that was created but is missing some
// of its landmarks. Nothing is rolled back.
type PartialCommitError struct {
	RouteID int
	Created int
	Total   int
	Err     error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf(
		"route %d committed with %d of %d landmarks: %v",
		e.RouteID, e.Created, e.Total, e.Err,
	)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }

// Commit creates the route and then all of its landmarks concurrently.
// A route-create failure aborts before any landmark is attempted. Landmark
// failures do not cancel their siblings and are not compensated; the
// returned record lists what was created.
//
// ctx is only checked before the route is created. After that every write,
// journal entry included, runs detached from its cancellation.
func (c *Committer) Commit(ctx context.Context, draft *domain.RouteDraft) (_ *domain.CommitRecord, err error) {
	defer obs.Time(ctx, "itinerary.Commit")(&err)

	if draft == nil {
		return nil, errors.New("commit: draft must be non-nil")
	}
	if err := draft.CheckCommittable(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	ctx = context.WithoutCancel(ctx)

	rec := &domain.CommitRecord{
		ID:        uuid.NewString(),
		DraftID:   draft.ID,
		RouteName: draft.Name,
		CreatedAt: c.clock(),
	}

	route, err := c.Backend.CreateRoute(ctx, draft.Name, domain.FormatStartingTime(draft.StartInstant))
	if err != nil {
		rec.Status = domain.CommitRouteFailed
		rec.Error = err.Error()
		c.finish(ctx, rec)
		return rec, fmt.Errorf("commit: create route %q: %w", draft.Name, err)
	}
	rec.RouteID = route.ID

	// Sequence ids are fixed here, before dispatch, so completion order does not matter.
	plan := draft.Plan()
	outcomes := make([]domain.LandmarkOutcome, len(plan))

	var g errgroup.Group
	for i, p := range plan {
		g.Go(func() error {
			outcomes[i] = domain.LandmarkOutcome{LandmarkID: p.LandmarkID, SequenceID: p.SequenceID}

			rl, err := c.Backend.CreateRouteLandmark(ctx, route.ID, p)
			c.observeWrite("create", err)
			if err != nil {
				outcomes[i].Error = err.Error()
				return fmt.Errorf("landmark %d (sequence %d): %w", p.LandmarkID, p.SequenceID, err)
			}
			outcomes[i].RouteLandmarkID = rl.ID
			return nil
		})
	}
	firstErr := g.Wait()
	rec.Landmarks = outcomes

	if firstErr != nil {
		rec.Status = domain.CommitPartial
		rec.Error = firstErr.Error()
		c.finish(ctx, rec)
		return rec, &PartialCommitError{
			RouteID: route.ID,
			Created: len(rec.Created()),
			Total:   len(plan),
			Err:     firstErr,
		}
	}

	rec.Status = domain.CommitSucceeded
	c.finish(ctx, rec)
	return rec, nil
}

// finish journals and announces a commit. Failures here are logged only:
// the backend writes have already happened.
func (c *Committer) finish(ctx context.Context, rec *domain.CommitRecord) {
	if c.Metrics != nil {
		c.Metrics.ObserveCommit(string(rec.Status))
	}

	reqID := obs.RequestID(ctx)
	if rec.Status != domain.CommitSucceeded {
		log.Printf(
			"req_id=%s commit=%s status=%s route_id=%d created=%d failed=%d",
			reqID, rec.ID, rec.Status, rec.RouteID, len(rec.Created()), len(rec.Failed()),
		)
	}

	if c.Journal != nil {
		if err := c.Journal.Record(ctx, *rec); err != nil {
			log.Printf("req_id=%s commit journal write failed commit=%s: %v", reqID, rec.ID, err)
		}
	}
	if c.Events != nil {
		if err := c.Events.PublishCommit(ctx, *rec); err != nil {
			log.Printf("req_id=%s commit event publish failed commit=%s: %v", reqID, rec.ID, err)
		}
	}
}

func (c *Committer) observeWrite(op string, err error) {
	if c.Metrics != nil {
		c.Metrics.ObserveLandmarkWrite(op, err)
	}
}

func (c *Committer) clock() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now().UTC()
}

// landmarkWriteError gives a backend 422 on a landmark write its operator-facing meaning.
func landmarkWriteError(op string, err error) error {
	if errors.Is(err, domain.ErrUnprocessable) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendRejectedTimes, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
