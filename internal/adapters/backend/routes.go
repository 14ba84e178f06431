package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/platform/obs"
	"strconv"
	"strings"
)

type routeCreateRequest struct {
	Name         string `json:"name"`
	StartingTime string `json:"starting_time"`
}

type routeUpdateRequest struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
}

type idRequest struct {
	ID int `json:"id"`
}

type routeResponse struct {
	ID           flexInt `json:"id"`
	Name         string  `json:"name"`
	StartingTime string  `json:"starting_time"`
}

func (r routeResponse) toDomain() domain.Route {
	return domain.Route{ID: int(r.ID), Name: r.Name, StartingTime: r.StartingTime}
}

func (c *Client) CreateRoute(ctx context.Context, name string, startingTime string) (_ domain.Route, err error) {
	defer obs.Time(ctx, "backend.CreateRoute")(&err)

	if strings.TrimSpace(name) == "" {
		return domain.Route{}, errors.New("create route: name must be non-empty")
	}

	var raw json.RawMessage
	body := routeCreateRequest{Name: name, StartingTime: startingTime}
	if err := c.send(ctx, http.MethodPost, "/route", body, &raw); err != nil {
		return domain.Route{}, fmt.Errorf("create route %q: %w", name, err)
	}

	out, err := decodeRoute(raw)
	if err != nil {
		return domain.Route{}, fmt.Errorf("create route %q: %w", name, err)
	}
	if out.ID == 0 {
		return domain.Route{}, fmt.Errorf("create route %q: backend returned no id", name)
	}
	if out.Name == "" {
		out.Name = name
	}
	if out.StartingTime == "" {
		out.StartingTime = startingTime
	}

	return out.toDomain(), nil
}

func (c *Client) GetRoute(ctx context.Context, id int) (_ domain.Route, err error) {
	defer obs.Time(ctx, "backend.GetRoute")(&err)

	var raw json.RawMessage
	path := "/route?" + url.Values{"id": {strconv.Itoa(id)}}.Encode()
	if err := c.getJSON(ctx, path, &raw); err != nil {
		if isNotFound(err) {
			return domain.Route{}, fmt.Errorf("get route %d: %w", id, domain.ErrRouteNotFound)
		}
		return domain.Route{}, fmt.Errorf("get route %d: %w", id, err)
	}

	out, err := decodeRoute(raw)
	if err != nil {
		return domain.Route{}, fmt.Errorf("get route %d: %w", id, err)
	}
	if out.ID == 0 {
		return domain.Route{}, fmt.Errorf("get route %d: %w", id, domain.ErrRouteNotFound)
	}

	return out.toDomain(), nil
}

func (c *Client) UpdateRoute(ctx context.Context, route domain.Route) (err error) {
	defer obs.Time(ctx, "backend.UpdateRoute")(&err)

	body := routeUpdateRequest{ID: route.ID, Name: route.Name, StartTime: route.StartingTime}
	if err := c.send(ctx, http.MethodPatch, "/route", body, nil); err != nil {
		return fmt.Errorf("update route %d: %w", route.ID, err)
	}
	return nil
}

func (c *Client) DeleteRoute(ctx context.Context, id int) (err error) {
	defer obs.Time(ctx, "backend.DeleteRoute")(&err)

	if err := c.send(ctx, http.MethodDelete, "/route", idRequest{ID: id}, nil); err != nil {
		return fmt.Errorf("delete route %d: %w", id, err)
	}
	return nil
}

// decodeRoute accepts either a single route object or the one-element
// array the backend returns for filtered reads.
func decodeRoute(raw json.RawMessage) (routeResponse, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []routeResponse
		if err := json.Unmarshal(raw, &list); err != nil {
			return routeResponse{}, fmt.Errorf("decode route list: %w", err)
		}
		if len(list) == 0 {
			return routeResponse{}, domain.ErrRouteNotFound
		}
		return list[0], nil
	}

	var r routeResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return routeResponse{}, fmt.Errorf("decode route: %w", err)
	}
	return r, nil
}
