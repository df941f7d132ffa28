package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/talgya/tinycity/internal/persistence"
	"github.com/talgya/tinycity/internal/sim"
)

// testClient wraps a cookie-jar HTTP client so all calls land in one
// session, the way a browser would.
type testClient struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := httptest.NewServer(NewServer(db, sim.DefaultBalance(), 0).Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &testClient{t: t, srv: srv, client: &http.Client{Jar: jar}}
}

func (tc *testClient) do(method, path string, body any) *http.Response {
	tc.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			tc.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, tc.srv.URL+path, &buf)
	if err != nil {
		tc.t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := tc.client.Do(req)
	if err != nil {
		tc.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (tc *testClient) doJSON(method, path string, body any, wantStatus int, out any) {
	tc.t.Helper()
	resp := tc.do(method, path, body)
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		tc.t.Fatalf("%s %s status = %d, want %d", method, path, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			tc.t.Fatalf("decode response: %v", err)
		}
	}
}

func TestState_NewSession(t *testing.T) {
	tc := newTestClient(t)

	var view stateView
	tc.doJSON("GET", "/api/v1/state", nil, http.StatusOK, &view)
	if view.Year != 0 || view.Population != 0 {
		t.Fatalf("year/population = %d/%d, want 0/0", view.Year, view.Population)
	}
	if view.Money != 10000 || view.MoneyDisplay != "$10,000" {
		t.Fatalf("money = %d (%q), want 10000 ($10,000)", view.Money, view.MoneyDisplay)
	}
	if len(view.Grid) != sim.GridSize || len(view.Grid[0]) != sim.GridSize {
		t.Fatalf("grid is %dx%d, want %dx%d",
			len(view.Grid), len(view.Grid[0]), sim.GridSize, sim.GridSize)
	}
	if view.Grid[0][0].Category != "empty" {
		t.Fatalf("cell = %q, want empty", view.Grid[0][0].Category)
	}
}

func TestZoneAndAdvance(t *testing.T) {
	tc := newTestClient(t)

	var view stateView
	tc.doJSON("POST", "/api/v1/zone",
		cellRequest{Row: 2, Col: 2, ZoneType: "residential"}, http.StatusOK, &view)
	if view.Money != 9500 {
		t.Fatalf("money = %d, want 9500", view.Money)
	}
	if got := view.Grid[2][2]; got.Category != "residential" || got.Stage != "unbuilt" {
		t.Fatalf("cell = %+v, want unbuilt residential", got)
	}

	tc.doJSON("POST", "/api/v1/road",
		cellRequest{Row: 2, Col: 1}, http.StatusOK, &view)
	if !view.Grid[2][2].HasRoad {
		t.Fatal("zone should report road access after building the road")
	}

	tc.doJSON("POST", "/api/v1/build",
		cellRequest{Row: 1, Col: 2, BuildingType: "power_plant"}, http.StatusOK, &view)
	if !view.Grid[2][2].Powered {
		t.Fatal("zone should report power next to the plant")
	}

	tc.doJSON("POST", "/api/v1/advance", nil, http.StatusOK, &view)
	tc.doJSON("POST", "/api/v1/advance", nil, http.StatusOK, &view)
	if got := view.Grid[2][2].Stage; got != "operating" {
		t.Fatalf("stage = %q, want operating after two years", got)
	}
	if view.Population != 100 {
		t.Fatalf("population = %d, want 100", view.Population)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	alice := newTestClient(t)

	var view stateView
	alice.doJSON("POST", "/api/v1/zone",
		cellRequest{Row: 0, Col: 0, ZoneType: "park"}, http.StatusOK, &view)

	// A second jar against the same handler gets its own city.
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	bob := &testClient{t: t, srv: alice.srv, client: &http.Client{Jar: jar}}
	bob.doJSON("GET", "/api/v1/state", nil, http.StatusOK, &view)
	if view.Grid[0][0].Category != "empty" {
		t.Fatalf("second session saw %q at (0,0), want empty", view.Grid[0][0].Category)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantKind   string
	}{
		{"out of bounds", "POST", "/api/v1/zone",
			cellRequest{Row: 7, Col: 0, ZoneType: "residential"},
			http.StatusBadRequest, "out_of_bounds"},
		{"bad zone token", "POST", "/api/v1/zone",
			cellRequest{Row: 0, Col: 0, ZoneType: "arcology"},
			http.StatusBadRequest, "invalid_type"},
		{"zone token on build", "POST", "/api/v1/build",
			cellRequest{Row: 0, Col: 0, BuildingType: "residential"},
			http.StatusBadRequest, "invalid_type"},
		{"bad disaster token", "POST", "/api/v1/disaster",
			cellRequest{Row: 0, Col: 0, DisasterType: "locusts"},
			http.StatusBadRequest, "invalid_type"},
		{"load missing save", "POST", "/api/v1/load",
			saveRequest{Name: "ghost-town"},
			http.StatusNotFound, "not_found"},
		{"save without name", "POST", "/api/v1/save",
			saveRequest{},
			http.StatusBadRequest, "invalid_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestClient(t)
			var got errorBody
			tc.doJSON(tt.method, tt.path, tt.body, tt.wantStatus, &got)
			if got.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestInsufficientFunds(t *testing.T) {
	tc := newTestClient(t)

	// Airport drains the treasury; a second one cannot be paid for.
	var view stateView
	tc.doJSON("POST", "/api/v1/build",
		cellRequest{Row: 0, Col: 0, BuildingType: "airport"}, http.StatusOK, &view)
	if view.Money != 0 {
		t.Fatalf("money = %d, want 0", view.Money)
	}

	var got errorBody
	tc.doJSON("POST", "/api/v1/build",
		cellRequest{Row: 0, Col: 1, BuildingType: "airport"},
		http.StatusPaymentRequired, &got)
	if got.Kind != "insufficient_funds" {
		t.Fatalf("kind = %q, want insufficient_funds", got.Kind)
	}

	tc.doJSON("GET", "/api/v1/state", nil, http.StatusOK, &view)
	if view.Grid[0][1].Category != "empty" {
		t.Fatal("failed purchase placed a building")
	}
}

func TestZoneBlock_OccupiedConflict(t *testing.T) {
	tc := newTestClient(t)

	var view stateView
	tc.doJSON("POST", "/api/v1/zone-block",
		cellRequest{Row: 0, Col: 0, ZoneType: "residential"}, http.StatusOK, &view)
	if view.Money != 8000 {
		t.Fatalf("money = %d, want 8000 for a default 2x2 block", view.Money)
	}

	var got errorBody
	tc.doJSON("POST", "/api/v1/zone-block",
		cellRequest{Row: 1, Col: 1, ZoneType: "commercial"}, http.StatusConflict, &got)
	if got.Kind != "occupied" {
		t.Fatalf("kind = %q, want occupied", got.Kind)
	}
}

func TestSaveLoadFlow(t *testing.T) {
	tc := newTestClient(t)

	var view stateView
	tc.doJSON("POST", "/api/v1/zone",
		cellRequest{Row: 2, Col: 2, ZoneType: "industrial"}, http.StatusOK, &view)
	tc.doJSON("POST", "/api/v1/advance", nil, http.StatusOK, &view)
	savedMoney := view.Money

	tc.doJSON("POST", "/api/v1/save", saveRequest{Name: "checkpoint"}, http.StatusOK, nil)

	var saves []persistence.SaveInfo
	tc.doJSON("GET", "/api/v1/saves", nil, http.StatusOK, &saves)
	if len(saves) != 1 || saves[0].Name != "checkpoint" {
		t.Fatalf("saves = %+v, want single checkpoint entry", saves)
	}

	// Mangle the live city, then load the checkpoint back.
	tc.doJSON("POST", "/api/v1/reset", nil, http.StatusOK, &view)
	if view.Year != 0 {
		t.Fatalf("year after reset = %d, want 0", view.Year)
	}
	tc.doJSON("POST", "/api/v1/load", saveRequest{Name: "checkpoint"}, http.StatusOK, &view)
	if view.Year != 1 || view.Money != savedMoney {
		t.Fatalf("loaded year/money = %d/%d, want 1/%d", view.Year, view.Money, savedMoney)
	}
	if view.Grid[2][2].Category != "industrial" {
		t.Fatalf("loaded cell = %q, want industrial", view.Grid[2][2].Category)
	}

	resp := tc.do("DELETE", "/api/v1/save?name=checkpoint", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", resp.StatusCode)
	}
	var got errorBody
	tc.doJSON("POST", "/api/v1/load", saveRequest{Name: "checkpoint"}, http.StatusNotFound, &got)
	if got.Kind != "not_found" {
		t.Fatalf("kind = %q, want not_found", got.Kind)
	}
}

func TestDisasterEndpoint(t *testing.T) {
	tc := newTestClient(t)

	var view stateView
	tc.doJSON("POST", "/api/v1/zone",
		cellRequest{Row: 2, Col: 2, ZoneType: "residential"}, http.StatusOK, &view)
	tc.doJSON("POST", "/api/v1/disaster",
		cellRequest{Row: 2, Col: 2, DisasterType: "fire"}, http.StatusOK, &view)
	if got := view.Grid[2][2].Stage; got != "abandoned" {
		t.Fatalf("stage = %q, want abandoned immediately", got)
	}

	var events []sim.Event
	tc.doJSON("GET", "/api/v1/events", nil, http.StatusOK, &events)
	if len(events) == 0 || events[len(events)-1].Category != "disaster" {
		t.Fatalf("events = %+v, want a disaster entry", events)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	tc := newTestClient(t)
	resp := tc.do("POST", "/api/v1/zone", map[string]any{
		"row": 0, "col": 0, "zone_type": "residential", "mystery": true,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for unknown field", resp.StatusCode)
	}
}
