package drafts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newDraft(t *testing.T, id string) *domain.RouteDraft {
	t.Helper()
	d, err := domain.NewRouteDraft(id, "Route 9", domain.CivilTime{Hour: 6, Minute: 0, Meridiem: domain.AM}, domain.DefaultCivilOffset)
	if err != nil {
		t.Fatalf("NewRouteDraft: %v", err)
	}
	return d
}

func newRedisRepo(t *testing.T) (*RedisDraftRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisDraftRepository(rdb, time.Hour), mr
}

// exerciseRepository runs the behaviour both repositories must share.
func exerciseRepository(t *testing.T, repo ports.DraftRepository) {
	ctx := context.Background()

	if err := repo.Create(ctx, newDraft(t, "d1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, newDraft(t, "d1")); !errors.Is(err, domain.ErrDraftExists) {
		t.Fatalf("expected ErrDraftExists, got %v", err)
	}

	updated, err := repo.Update(ctx, "d1", func(d *domain.RouteDraft) error {
		_, err := d.AddStop(domain.StopInput{LandmarkID: 1, Distance: "0"})
		return err
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Stops) != 1 {
		t.Fatalf("updated stops = %d, want 1", len(updated.Stops))
	}

	// a failing update leaves the stored draft alone
	_, err = repo.Update(ctx, "d1", func(d *domain.RouteDraft) error {
		_, err := d.AddStop(domain.StopInput{LandmarkID: 1, Distance: "0"})
		return err
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, err := repo.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Stops) != 1 || !got.Stops[0].ArrivalInstant.Equal(got.StartInstant) {
		t.Fatalf("stored draft = %+v", got)
	}

	if err := repo.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "d1"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, "d1", func(*domain.RouteDraft) error { return nil }); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestMemoryDraftRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryDraftRepository())
}

func TestRedisDraftRepository(t *testing.T) {
	repo, _ := newRedisRepo(t)
	exerciseRepository(t, repo)
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDraftRepository()
	_ = repo.Create(ctx, newDraft(t, "d1"))

	d, _ := repo.Get(ctx, "d1")
	d.Name = "changed"

	again, _ := repo.Get(ctx, "d1")
	if again.Name != "Route 9" {
		t.Fatalf("stored draft mutated through a copy: %q", again.Name)
	}
}

func TestRedisDraftExpires(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newDraft(t, "d1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mr.FastForward(2 * time.Hour)

	if _, err := repo.Get(ctx, "d1"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound after TTL, got %v", err)
	}
}

func TestRedisConcurrentUpdates(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()
	_ = repo.Create(ctx, newDraft(t, "d1"))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = repo.Update(ctx, "d1", func(d *domain.RouteDraft) error {
				d.Name = "Route " + string(rune('A'+n))
				return nil
			})
		}(i)
	}
	wg.Wait()

	d, err := repo.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Name == "Route 9" {
		t.Fatal("no concurrent update was applied")
	}
}

func TestLoadDraftFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	content := `{
		"name": "Route 9",
		"starting_time": "06:00 AM",
		"stops": [
			{"landmark_id": 1, "landmark_name": "Depot", "distance_from_start": 0, "first": true},
			{"landmark_id": 2, "landmark_name": "Market", "distance_from_start": "5000", "arrival": "07:15 AM", "departure": "07:20 AM"},
			{"landmark_id": 3, "landmark_name": "Terminal", "distance_from_start": 9000, "arrival": "08:00 AM", "terminus": true}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	d, err := LoadDraftFile(path, "file-1", domain.DefaultCivilOffset)
	if err != nil {
		t.Fatalf("LoadDraftFile: %v", err)
	}

	plan := d.Plan()
	if len(plan) != 3 || plan[0].LandmarkID != 1 || plan[2].LandmarkID != 3 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan[1].ArrivalDelta != 4500 || plan[1].DepartureDelta != 4800 {
		t.Fatalf("market deltas = %d/%d", plan[1].ArrivalDelta, plan[1].DepartureDelta)
	}
}

func TestLoadDraftFileReportsBadTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	content := `{"name":"R","starting_time":"06:00 AM","stops":[{"landmark_id":1,"distance_from_start":0},{"landmark_id":2,"distance_from_start":10,"arrival":"25:99"}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadDraftFile(path, "x", domain.DefaultCivilOffset)
	var tfe *domain.TimeFormatError
	if !errors.As(err, &tfe) || tfe.Field != "arrival" {
		t.Fatalf("expected arrival TimeFormatError, got %v", err)
	}
}
