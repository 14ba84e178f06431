package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-itinerary-service/internal/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 5

// RedisDraftRepository stores each draft as a JSON string with a TTL, so
// drafts survive server restarts and abandoned sessions expire on their own.
// Updates use WATCH/MULTI and retry when another writer got in first.
type RedisDraftRepository struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisDraftRepository(rdb *redis.Client, ttl time.Duration) *RedisDraftRepository {
	return &RedisDraftRepository{rdb: rdb, prefix: "itinerary:draft:", ttl: ttl}
}

func (r *RedisDraftRepository) key(id string) string { return r.prefix + id }

func (r *RedisDraftRepository) Create(ctx context.Context, d *domain.RouteDraft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("create draft %q: marshal: %w", d.ID, err)
	}

	ok, err := r.rdb.SetNX(ctx, r.key(d.ID), b, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("create draft %q: %w", d.ID, err)
	}
	if !ok {
		return fmt.Errorf("create draft %q: %w", d.ID, domain.ErrDraftExists)
	}
	return nil
}

func (r *RedisDraftRepository) Get(ctx context.Context, id string) (*domain.RouteDraft, error) {
	b, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get draft %q: %w", id, domain.ErrDraftNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get draft %q: %w", id, err)
	}
	return decodeDraft(id, b)
}

func (r *RedisDraftRepository) Update(
	ctx context.Context,
	id string,
	fn func(*domain.RouteDraft) error,
) (*domain.RouteDraft, error) {
	key := r.key(id)
	var updated *domain.RouteDraft

	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("update draft %q: %w", id, domain.ErrDraftNotFound)
		}
		if err != nil {
			return err
		}

		d, err := decodeDraft(id, b)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}

		nb, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("update draft %q: marshal: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, nb, r.ttl)
			return nil
		})
		if err == nil {
			updated = d
		}
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("update draft %q: too much contention", id)
}

func (r *RedisDraftRepository) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete draft %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete draft %q: %w", id, domain.ErrDraftNotFound)
	}
	return nil
}

func decodeDraft(id string, b []byte) (*domain.RouteDraft, error) {
	var d domain.RouteDraft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode draft %q: %w", id, err)
	}
	return &d, nil
}
