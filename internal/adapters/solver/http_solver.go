package solver

import (
	"bytes"
	"context"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/platform/obs"
	"delivery-route-console/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPSolver forwards problems to an external routing backend over JSON.
//
// The backend answers POST /solve with routes whose distance is in meters and
// travel time in seconds; both are converted to km and minutes here.
type HTTPSolver struct {
	session *http.Client
	baseURL string
}

type Option func(*HTTPSolver)

func WithHTTPClient(hc *http.Client) Option {
	return func(s *HTTPSolver) { s.session = hc }
}

func NewHTTPSolver(baseURL string, opts ...Option) (*HTTPSolver, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("solver url is empty")
	}

	s := &HTTPSolver{
		session: &http.Client{Timeout: 2 * time.Minute},
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ ports.Solver = (*HTTPSolver)(nil)

type solveStopBody struct {
	ID         int64       `json:"id"`
	ExternalID string      `json:"external_id"`
	Volume     float64     `json:"volume"`
	Window     [2]*float64 `json:"window"`
	Location   [2]float64  `json:"location"`
}

type solveVehicleBody struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity"`
}

type solveRequestBody struct {
	Depot    [2]float64         `json:"depot"`
	Stops    []solveStopBody    `json:"stops"`
	Vehicles []solveVehicleBody `json:"vehicles"`
	ForceAll bool               `json:"force_all"`
}

type solveRouteBody struct {
	VehicleID int64          `json:"vehicle_id"`
	Stops     []string       `json:"stops"`
	Geometry  [][][2]float64 `json:"geometry"`
	DistanceM float64        `json:"distance_m"`
	DurationS float64        `json:"duration_s"`
}

type solveResponseBody struct {
	Routes []solveRouteBody `json:"routes"`
	Error  *string          `json:"error"`
}

func (s *HTTPSolver) Solve(ctx context.Context, p ports.SolveProblem) (_ []domain.Route, err error) {
	defer obs.Time(ctx, "solver.Solve")(&err)

	body := solveRequestBody{
		Depot:    p.Depot.LatLng(),
		Stops:    make([]solveStopBody, 0, len(p.Stops)),
		Vehicles: make([]solveVehicleBody, 0, len(p.Vehicles)),
		ForceAll: p.ForceAll,
	}
	for _, st := range p.Stops {
		start := st.WindowStart
		body.Stops = append(body.Stops, solveStopBody{
			ID:         st.ID,
			ExternalID: st.ExternalID,
			Volume:     st.Volume,
			Window:     [2]*float64{&start, st.WindowEnd},
			Location:   st.Location.LatLng(),
		})
	}
	byID := make(map[int64]ports.SolveVehicle, len(p.Vehicles))
	for _, v := range p.Vehicles {
		byID[v.ID] = v
		body.Vehicles = append(body.Vehicles, solveVehicleBody{ID: v.ID, Name: v.Name, Capacity: v.Capacity})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("solver: encode request: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, "/solve", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	defer resp.Body.Close()

	var res solveResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("solver: decode response: %w", err)
	}
	if res.Error != nil && res.Routes == nil {
		return nil, &ports.SolverRejection{Msg: *res.Error}
	}

	routes := make([]domain.Route, 0, len(res.Routes))
	for _, r := range res.Routes {
		v, ok := byID[r.VehicleID]
		if !ok {
			return nil, fmt.Errorf("solver: route for unknown vehicle %d", r.VehicleID)
		}

		geometry := make([]domain.Segment, 0, len(r.Geometry))
		for _, seg := range r.Geometry {
			points := make(domain.Segment, 0, len(seg))
			for _, pair := range seg {
				points = append(points, domain.Coordinates{Lat: pair[0], Lon: pair[1]})
			}
			geometry = append(geometry, points)
		}

		stops := r.Stops
		if stops == nil {
			stops = []string{}
		}

		routes = append(routes, domain.Route{
			Vehicle:       domain.RouteVehicle{ID: v.ID, Name: v.Name, Capacity: v.Capacity},
			Stops:         stops,
			Geometry:      geometry,
			DistanceKm:    r.DistanceM / 1000,
			TravelTimeMin: r.DurationS / 60,
		})
	}

	return routes, nil
}

// Ready reports the backend's graph_loaded flag. Any failure counts as not ready.
func (s *HTTPSolver) Ready(ctx context.Context) bool {
	req, err := s.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return false
	}
	resp, err := s.do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var body struct {
		GraphLoaded bool `json:"graph_loaded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.GraphLoaded
}

func (s *HTTPSolver) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if id := obs.RequestID(ctx); id != "" {
		req.Header.Set(obs.RequestIDHeader, id)
	}
	return req, nil
}

func (s *HTTPSolver) do(req *http.Request) (*http.Response, error) {
	resp, err := s.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		if resp.StatusCode < 500 {
			if msg, ok := rejectionMessage(b); ok {
				return nil, &ports.SolverRejection{Msg: msg}
			}
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

// rejectionMessage extracts a non-empty {"error": "..."} message from a 4xx body.
func rejectionMessage(b []byte) (string, bool) {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &body); err != nil || strings.TrimSpace(body.Error) == "" {
		return "", false
	}
	return body.Error, true
}
