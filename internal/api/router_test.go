package api

import (
	"bytes"
	"delivery-route-console/internal/adapters/geocode"
	"delivery-route-console/internal/adapters/repositories"
	"delivery-route-console/internal/adapters/solver"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/platform/db"
	"delivery-route-console/internal/platform/obs"
	"delivery-route-console/internal/ports"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	return testServerWith(t, solver.StaticSolver{})
}

func testServerWith(t *testing.T, s ports.Solver) *httptest.Server {
	t.Helper()

	conn, dialect, err := db.Open("sqlite", filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := repositories.InitSchema(conn, dialect); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	srv := httptest.NewServer(NewRouter(Deps{
		Repo: repositories.NewSQLPlanningRepository(conn, dialect),
		Geocoder: geocode.NewMockGeocoder(map[string]domain.Coordinates{
			"Khreshchatyk 1": {Lat: 50.45, Lon: 30.52},
		}),
		Solver: s,
	}))
	t.Cleanup(srv.Close)
	return srv
}

// send issues a request and returns the status and raw body.
func send(t *testing.T, method, url, body string) (int, string) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, strings.TrimSpace(string(b))
}

func TestHealth(t *testing.T) {
	srv := testServer(t)

	status, body := send(t, http.MethodGet, srv.URL+"/api/health", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body != `{"status":"ok","graph_loaded":true}` {
		t.Fatalf("body = %s", body)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := testServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	req.Header.Set(obs.RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(obs.RequestIDHeader); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q, want abc-123", got)
	}

	resp, err = http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get(obs.RequestIDHeader) == "" {
		t.Fatalf("missing generated request id")
	}
}

func TestDepotFlow(t *testing.T) {
	srv := testServer(t)

	if status, body := send(t, http.MethodGet, srv.URL+"/api/depot", ""); status != 200 || body != "null" {
		t.Fatalf("GET depot = %d %s, want 200 null", status, body)
	}

	status, body := send(t, http.MethodPost, srv.URL+"/api/depot", `{"address": "Khreshchatyk 1"}`)
	if status != http.StatusOK {
		t.Fatalf("POST depot = %d %s", status, body)
	}
	if body != `{"latitude":50.45,"longitude":30.52,"address":"Khreshchatyk 1"}` {
		t.Fatalf("body = %s", body)
	}

	status, body = send(t, http.MethodPost, srv.URL+"/api/depot", `{"latitude": 1}`)
	if status != http.StatusBadRequest || body != `{"error":"coordinates or address required"}` {
		t.Fatalf("POST depot = %d %s, want 400 coordinates or address required", status, body)
	}

	status, _ = send(t, http.MethodPost, srv.URL+"/api/depot", `{"lat": 1}`)
	if status != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", status)
	}
}

func TestVehicleCRUD(t *testing.T) {
	srv := testServer(t)

	status, body := send(t, http.MethodPost, srv.URL+"/api/vehicles", `{"name": "Van", "capacity": 10}`)
	if status != http.StatusCreated {
		t.Fatalf("POST vehicles = %d %s", status, body)
	}
	var v struct {
		ID     int64 `json:"id"`
		Active bool  `json:"active"`
	}
	if err := json.Unmarshal([]byte(body), &v); err != nil || !v.Active {
		t.Fatalf("created = %s, want active vehicle", body)
	}

	if status, body := send(t, http.MethodPost, srv.URL+"/api/vehicles", `{"name": " "}`); status != 400 || body != `{"error":"name is required"}` {
		t.Fatalf("blank name = %d %s", status, body)
	}

	status, body = send(t, http.MethodPut, srv.URL+"/api/vehicles/1", `{"active": false}`)
	if status != http.StatusOK || !strings.Contains(body, `"active":false`) {
		t.Fatalf("PUT = %d %s, want inactive", status, body)
	}

	if status, body := send(t, http.MethodPut, srv.URL+"/api/vehicles/99", `{"active": false}`); status != 404 || body != `{"error":"vehicle not found"}` {
		t.Fatalf("PUT unknown = %d %s", status, body)
	}
	if status, _ := send(t, http.MethodDelete, srv.URL+"/api/vehicles/1", ""); status != http.StatusNoContent {
		t.Fatalf("DELETE = %d, want 204", status)
	}
	if status, body := send(t, http.MethodDelete, srv.URL+"/api/vehicles/1", ""); status != 404 || body != `{"error":"vehicle not found"}` {
		t.Fatalf("DELETE again = %d %s", status, body)
	}
	if status, body := send(t, http.MethodGet, srv.URL+"/api/vehicles", ""); status != 200 || body != "[]" {
		t.Fatalf("GET = %d %s, want []", status, body)
	}
}

func TestOrderCRUD(t *testing.T) {
	srv := testServer(t)

	status, body := send(t, http.MethodPost, srv.URL+"/api/orders", `{"external_id": "A-1", "address": "Khreshchatyk 1", "volume": 2}`)
	if status != http.StatusCreated {
		t.Fatalf("POST orders = %d %s", status, body)
	}
	if !strings.Contains(body, `"latitude":50.45`) {
		t.Fatalf("created = %s, want geocoded", body)
	}

	if status, body := send(t, http.MethodPost, srv.URL+"/api/orders", `{"external_id": "A-2", "address": "Nowhere"}`); status != 400 || body != `{"error":"could not geocode"}` {
		t.Fatalf("unknown address = %d %s", status, body)
	}

	status, body = send(t, http.MethodPut, srv.URL+"/api/orders/1", `{"window_end": 60, "volume": 3}`)
	if status != http.StatusOK || !strings.Contains(body, `"window_end":60`) || !strings.Contains(body, `"volume":3`) {
		t.Fatalf("PUT = %d %s", status, body)
	}
	status, body = send(t, http.MethodPut, srv.URL+"/api/orders/1", `{"window_end": null}`)
	if status != http.StatusOK || !strings.Contains(body, `"window_end":null`) {
		t.Fatalf("PUT null = %d %s", status, body)
	}
	if status, body := send(t, http.MethodPut, srv.URL+"/api/orders/abc", `{}`); status != 404 || body != `{"error":"order not found"}` {
		t.Fatalf("PUT bad id = %d %s", status, body)
	}

	if status, _ := send(t, http.MethodDelete, srv.URL+"/api/orders/1", ""); status != http.StatusNoContent {
		t.Fatalf("DELETE = %d, want 204", status)
	}
	if status, body := send(t, http.MethodGet, srv.URL+"/api/orders", ""); status != 200 || body != "[]" {
		t.Fatalf("GET = %d %s, want []", status, body)
	}
}

func TestImport(t *testing.T) {
	srv := testServer(t)

	upload := func(field, filename, content string) (int, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile(field, filename)
		io.WriteString(fw, content)
		mw.Close()

		resp, err := http.Post(srv.URL+"/api/orders/import", mw.FormDataContentType(), &buf)
		if err != nil {
			t.Fatalf("Post: %v", err)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, strings.TrimSpace(string(b))
	}

	status, body := upload("file", "orders.csv", "id,volume,lat,lon,address\nA-1,1,50.1,30.1,\nA-2,2,,,Nowhere\n")
	if status != http.StatusOK {
		t.Fatalf("import = %d %s", status, body)
	}
	var created []struct {
		ExternalID string `json:"external_id"`
	}
	if err := json.Unmarshal([]byte(body), &created); err != nil || len(created) != 1 || created[0].ExternalID != "A-1" {
		t.Fatalf("created = %s, want only A-1", body)
	}

	if status, body := upload("upload", "orders.csv", "id,volume\n"); status != 400 || body != `{"error":"file required"}` {
		t.Fatalf("wrong field = %d %s", status, body)
	}
	if status, body := upload("file", "orders.csv", "id,address\n"); status != 400 || body != `{"error":"columns id and volume required"}` {
		t.Fatalf("missing columns = %d %s", status, body)
	}
}

func TestSolve(t *testing.T) {
	srv := testServer(t)

	if status, body := send(t, http.MethodPost, srv.URL+"/api/solve", `{"force_all": false, "vehicles": []}`); status != 400 || body != `{"error":"depot is required"}` {
		t.Fatalf("no depot = %d %s", status, body)
	}

	send(t, http.MethodPost, srv.URL+"/api/depot", `{"latitude": 50.45, "longitude": 30.52}`)
	send(t, http.MethodPost, srv.URL+"/api/vehicles", `{"name": "Van", "capacity": 10}`)
	send(t, http.MethodPost, srv.URL+"/api/orders", `{"external_id": "A-1", "latitude": 50.46, "longitude": 30.50, "volume": 1}`)

	status, body := send(t, http.MethodPost, srv.URL+"/api/solve", `{"force_all": false, "vehicles": []}`)
	if status != http.StatusOK {
		t.Fatalf("solve = %d %s", status, body)
	}

	var res struct {
		Routes []struct {
			Vehicle struct {
				Name string `json:"name"`
			} `json:"vehicle"`
			Stops    []string       `json:"stops"`
			Geometry [][][2]float64 `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Routes) != 1 || res.Routes[0].Vehicle.Name != "Van" || res.Routes[0].Stops[0] != "A-1" {
		t.Fatalf("routes = %+v", res.Routes)
	}
	if first := res.Routes[0].Geometry[0][0]; first != [2]float64{50.45, 30.52} {
		t.Fatalf("first point = %v, want depot as [lat, lon]", first)
	}

	if status, body := send(t, http.MethodPost, srv.URL+"/api/solve", `{"vehicles": [42]}`); status != 400 || body != `{"error":"no selected vehicles"}` {
		t.Fatalf("unknown selection = %d %s", status, body)
	}
}

func TestSolveRelaysSolverRejection(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"orders exceed fleet capacity"}`)
	}))
	defer backend.Close()

	hs, err := solver.NewHTTPSolver(backend.URL)
	if err != nil {
		t.Fatalf("NewHTTPSolver: %v", err)
	}
	srv := testServerWith(t, hs)

	send(t, http.MethodPost, srv.URL+"/api/depot", `{"latitude": 50.45, "longitude": 30.52}`)
	send(t, http.MethodPost, srv.URL+"/api/vehicles", `{"name": "Van", "capacity": 1}`)
	send(t, http.MethodPost, srv.URL+"/api/orders", `{"external_id": "A-1", "latitude": 50.46, "longitude": 30.50, "volume": 5}`)

	status, body := send(t, http.MethodPost, srv.URL+"/api/solve", `{"force_all": false, "vehicles": []}`)
	if status != http.StatusBadRequest || body != `{"error":"orders exceed fleet capacity"}` {
		t.Fatalf("solve = %d %s, want 400 with the solver's message", status, body)
	}
}

func TestRouterErrorsAreJSON(t *testing.T) {
	srv := testServer(t)

	if status, body := send(t, http.MethodGet, srv.URL+"/api/nope", ""); status != 404 || body != `{"error":"not found"}` {
		t.Fatalf("unknown route = %d %s", status, body)
	}
	if status, body := send(t, http.MethodPatch, srv.URL+"/api/depot", ""); status != 405 || body != `{"error":"method not allowed"}` {
		t.Fatalf("wrong method = %d %s", status, body)
	}

	status, body := send(t, http.MethodGet, srv.URL+"/metrics", "")
	if status != http.StatusOK || !strings.Contains(body, "routeplanner_http_requests_total") {
		t.Fatalf("metrics = %d, want routeplanner counters", status)
	}
}
