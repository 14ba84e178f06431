package backend

import (
	"context"
	"fmt"
	"route-itinerary-service/internal/domain"
	"slices"
	"sync"
)

// MemoryBackend is an in-process ports.RouteBackend for tests and local runs.
// Individual landmark creates can be made to fail to reproduce partial commits.
type MemoryBackend struct {
	mu sync.Mutex

	nextRouteID    int
	nextLandmarkID int
	routes         map[int]domain.Route
	landmarks      map[int]domain.RouteLandmark

	routeErr     error
	landmarkErrs map[int]error
	creates      int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		nextRouteID:    1,
		nextLandmarkID: 1,
		routes:         make(map[int]domain.Route),
		landmarks:      make(map[int]domain.RouteLandmark),
		landmarkErrs:   make(map[int]error),
	}
}

// FailRouteCreate makes every following CreateRoute return err. nil clears it.
func (m *MemoryBackend) FailRouteCreate(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routeErr = err
}

// FailLandmark makes creates and updates for landmarkID return err.
func (m *MemoryBackend) FailLandmark(landmarkID int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.landmarkErrs, landmarkID)
		return
	}
	m.landmarkErrs[landmarkID] = err
}

// LandmarkCreates counts CreateRouteLandmark calls, failed ones included.
func (m *MemoryBackend) LandmarkCreates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}

func (m *MemoryBackend) CreateRoute(ctx context.Context, name string, startingTime string) (domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.routeErr != nil {
		return domain.Route{}, m.routeErr
	}

	r := domain.Route{ID: m.nextRouteID, Name: name, StartingTime: startingTime}
	m.nextRouteID++
	m.routes[r.ID] = r
	return r, nil
}

func (m *MemoryBackend) GetRoute(ctx context.Context, id int) (domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.routes[id]
	if !ok {
		return domain.Route{}, fmt.Errorf("get route %d: %w", id, domain.ErrRouteNotFound)
	}
	return r, nil
}

func (m *MemoryBackend) UpdateRoute(ctx context.Context, route domain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[route.ID]; !ok {
		return fmt.Errorf("update route %d: %w", route.ID, domain.ErrRouteNotFound)
	}
	m.routes[route.ID] = route
	return nil
}

// DeleteRoute removes the route only; its landmarks are left behind as the backend does.
func (m *MemoryBackend) DeleteRoute(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[id]; !ok {
		return fmt.Errorf("delete route %d: %w", id, domain.ErrRouteNotFound)
	}
	delete(m.routes, id)
	return nil
}

func (m *MemoryBackend) CreateRouteLandmark(
	ctx context.Context,
	routeID int,
	plan domain.LandmarkPlan,
) (domain.RouteLandmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creates++
	if err := m.landmarkErrs[plan.LandmarkID]; err != nil {
		return domain.RouteLandmark{}, err
	}
	if _, ok := m.routes[routeID]; !ok {
		return domain.RouteLandmark{}, &StatusError{Code: 404, Body: "route not found"}
	}

	rl := domain.RouteLandmark{
		ID:                m.nextLandmarkID,
		RouteID:           routeID,
		LandmarkID:        plan.LandmarkID,
		SequenceID:        plan.SequenceID,
		DistanceFromStart: plan.DistanceFromStart,
		ArrivalDelta:      plan.ArrivalDelta,
		DepartureDelta:    plan.DepartureDelta,
	}
	m.nextLandmarkID++
	m.landmarks[rl.ID] = rl
	return rl, nil
}

func (m *MemoryBackend) UpdateRouteLandmark(ctx context.Context, update domain.LandmarkUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rl, ok := m.landmarks[update.ID]
	if !ok {
		return fmt.Errorf("update route landmark %d: %w", update.ID, domain.ErrLandmarkNotFound)
	}
	if err := m.landmarkErrs[rl.LandmarkID]; err != nil {
		return err
	}

	rl.ArrivalDelta = update.ArrivalDelta
	rl.DepartureDelta = update.DepartureDelta
	if update.DistanceFromStart != nil {
		rl.DistanceFromStart = *update.DistanceFromStart
	}
	m.landmarks[rl.ID] = rl
	return nil
}

// DeleteRouteLandmark does not renumber the remaining rows.
func (m *MemoryBackend) DeleteRouteLandmark(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.landmarks[id]; !ok {
		return fmt.Errorf("delete route landmark %d: %w", id, domain.ErrLandmarkNotFound)
	}
	delete(m.landmarks, id)
	return nil
}

// ListRouteLandmarks returns rows in id order, like storage order on the real backend.
func (m *MemoryBackend) ListRouteLandmarks(ctx context.Context, routeID int) ([]domain.RouteLandmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.RouteLandmark
	for _, rl := range m.landmarks {
		if rl.RouteID == routeID {
			out = append(out, rl)
		}
	}
	slices.SortFunc(out, func(a, b domain.RouteLandmark) int { return a.ID - b.ID })
	return out, nil
}
