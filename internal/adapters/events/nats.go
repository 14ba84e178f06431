package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"route-itinerary-service/internal/domain"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

// NATSPublisher announces finished commits on <prefix>.<status>, so a
// partial commit can be picked up by whoever cleans up orphaned routes.
type NATSPublisher struct {
	nc          *nats.Conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("route-itinerary-service"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected err=%v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %q: %w", url, err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: prefix, logSubjects: logSubjects, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// CommitMessage is the wire form of a finished commit.
type CommitMessage struct {
	CommitID  string                   `json:"commitId"`
	DraftID   string                   `json:"draftId"`
	RouteID   int                      `json:"routeId,omitempty"`
	RouteName string                   `json:"routeName"`
	Status    string                   `json:"status"`
	Error     string                   `json:"error,omitempty"`
	Created   int                      `json:"created"`
	Failed    int                      `json:"failed"`
	Landmarks []domain.LandmarkOutcome `json:"landmarks"`
	Timestamp time.Time                `json:"timestamp"`
}

func NewCommitMessage(rec domain.CommitRecord) CommitMessage {
	return CommitMessage{
		CommitID:  rec.ID,
		DraftID:   rec.DraftID,
		RouteID:   rec.RouteID,
		RouteName: rec.RouteName,
		Status:    string(rec.Status),
		Error:     rec.Error,
		Created:   len(rec.Created()),
		Failed:    len(rec.Failed()),
		Landmarks: rec.Landmarks,
		Timestamp: rec.CreatedAt,
	}
}

func (p *NATSPublisher) PublishCommit(ctx context.Context, rec domain.CommitRecord) error {
	subject := Subject(p.prefix, rec.Status)
	b, err := json.Marshal(NewCommitMessage(rec))
	if err != nil {
		return fmt.Errorf("publish commit %s: marshal: %w", rec.ID, err)
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s", subject)
	}

	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	if err != nil {
		return fmt.Errorf("publish commit %s: %w", rec.ID, err)
	}
	return nil
}

// Subject builds the NATS subject for a commit outcome.
func Subject(prefix string, status domain.CommitStatus) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "itinerary.commit"
	}
	return prefix + "." + subjectToken(string(status))
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}

// Noop discards events when NATS is not configured.
type Noop struct{}

func (Noop) PublishCommit(ctx context.Context, rec domain.CommitRecord) error { return nil }
