package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"route-itinerary-service/internal/adapters/backend"
	"route-itinerary-service/internal/adapters/drafts"
	"route-itinerary-service/internal/adapters/events"
	"route-itinerary-service/internal/adapters/journal"
	"route-itinerary-service/internal/config"
	"route-itinerary-service/internal/platform/db"
	"route-itinerary-service/internal/platform/metrics"
	"route-itinerary-service/internal/ports"
	"route-itinerary-service/internal/services"
	"time"

	"github.com/redis/go-redis/v9"
)

// App holds the concrete adapters chosen by configuration.
type App struct {
	Config    *config.Config
	Metrics   *metrics.Collector
	Backend   ports.RouteBackend
	Journal   ports.CommitJournal
	Committer *services.Committer
	Drafts    *services.DraftService

	closers []func()
}

// New wires adapters behind ports. Close releases every connection it opened.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		Config:  cfg,
		Metrics: metrics.NewCollector(time.Duration(cfg.CivilOffset)),
	}

	var err error
	if a.Backend, err = a.openBackend(); err != nil {
		a.Close()
		return nil, err
	}
	if a.Journal, err = a.openJournal(); err != nil {
		a.Close()
		return nil, err
	}

	c := services.NewCommitter(a.Backend, cfg.CivilOffset)
	c.Journal = a.Journal
	c.Metrics = a.Metrics
	if c.Events, err = a.openEvents(); err != nil {
		a.Close()
		return nil, err
	}
	a.Committer = c

	repo, err := a.openDraftRepository()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Drafts = services.NewDraftService(repo, c, cfg.CivilOffset)

	return a, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openBackend falls back to an in-process backend when BACKEND_URL is unset,
// which is only useful for local runs.
func (a *App) openBackend() (ports.RouteBackend, error) {
	if a.Config.BackendURL == "" {
		log.Printf("BACKEND_URL not set, using in-memory route backend")
		return backend.NewMemoryBackend(), nil
	}

	c, err := backend.NewClient(
		a.Config.BackendURL,
		backend.WithToken(a.Config.BackendToken),
		backend.WithObserver(a.Metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("route backend: %w", err)
	}
	return c, nil
}

func (a *App) openJournal() (ports.CommitJournal, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch a.Config.JournalDriver {
	case "memory":
		return journal.NewMemoryCommitJournal(), nil
	case "postgres":
		if conn, err = db.Open(a.Config.DatabaseURL); err != nil {
			return nil, fmt.Errorf("commit journal: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		if err := journal.InitPostgresSchema(conn); err != nil {
			return nil, fmt.Errorf("commit journal: %w", err)
		}
		return journal.NewSQLCommitJournal(conn), nil
	default:
		if conn, err = db.OpenSqlite(a.Config.SqlitePath); err != nil {
			return nil, fmt.Errorf("commit journal: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		if err := journal.InitSqliteSchema(conn); err != nil {
			return nil, fmt.Errorf("commit journal: %w", err)
		}
		return journal.NewSqliteCommitJournal(conn), nil
	}
}

func (a *App) openEvents() (ports.CommitEvents, error) {
	if a.Config.NATSURL == "" {
		return events.Noop{}, nil
	}

	p, err := events.NewNATSPublisher(a.Config.NATSURL, a.Config.NATSSubject, a.Config.LogNATSSubjects, a.Metrics)
	if err != nil {
		return nil, fmt.Errorf("commit events: %w", err)
	}
	a.closers = append(a.closers, p.Close)
	return p, nil
}

func (a *App) openDraftRepository() (ports.DraftRepository, error) {
	if a.Config.DraftStore != "redis" {
		return drafts.NewMemoryDraftRepository(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	})
	a.closers = append(a.closers, func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("draft store: ping redis %s: %w", a.Config.RedisAddr, err)
	}
	return drafts.NewRedisDraftRepository(rdb, a.Config.DraftTTL), nil
}
