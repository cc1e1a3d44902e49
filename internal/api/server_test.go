package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/appliance-sim/internal/infrastructure/config"
	"github.com/nerrad567/appliance-sim/internal/infrastructure/logging"
	"github.com/nerrad567/appliance-sim/internal/simulation"
	"github.com/nerrad567/appliance-sim/internal/telemetry"
)

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

// staticProvider always returns the same snapshot.
type staticProvider struct {
	snap *simulation.Snapshot
}

func (p staticProvider) Current() *simulation.Snapshot { return p.snap }

// panicProvider exercises the recovery middleware.
type panicProvider struct{}

func (panicProvider) Current() *simulation.Snapshot { panic("provider exploded") }

type fakeExporter bool

func (f fakeExporter) IsConnected() bool { return bool(f) }

func testSnapshot(mode simulation.Mode, values ...int) *simulation.Snapshot {
	ts := time.Date(2024, 1, 1, 20, 0, 0, 123_000_000, time.UTC)
	snap := &simulation.Snapshot{Mode: mode, Tick: 3, TakenAt: ts}
	for i, d := range simulation.Catalog() {
		v := 0
		if i < len(values) {
			v = values[i]
		}
		snap.Readings = append(snap.Readings, simulation.Reading{
			DeviceID: d.ID, Name: d.Name, Kind: d.Kind, Value: v, Timestamp: ts,
		})
	}
	return snap
}

// testServer creates a Server over provider with metrics enabled.
func testServer(t *testing.T, mode simulation.Mode, provider simulation.Provider) *Server {
	t.Helper()

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Port:     0,
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS: config.WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Logger:    logging.Discard(),
		Provider:  provider,
		Mode:      mode,
		Version:   "test",
		Collector: telemetry.NewCollector(),
		Exporters: map[string]ConnectionReporter{
			telemetry.ExporterMQTT: fakeExporter(true),
			telemetry.ExporterAMQP: fakeExporter(false),
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv
}

func do(t *testing.T, h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEntries(t *testing.T, body []byte) []map[string]any {
	t.Helper()
	var entries []map[string]any
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("response is not a JSON array: %v\n%s", err, body)
	}
	return entries
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func catalogIDs() map[string]bool {
	ids := map[string]bool{}
	for _, d := range simulation.Catalog() {
		ids[d.ID] = true
	}
	return ids
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Provider: staticProvider{}}); err == nil {
		t.Error("New() without logger should fail")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New() without provider should fail")
	}
}

func TestServer_StartAndClose(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})

	if err := srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start should fail")
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer srv.Close()

	resp, err := http.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET / status = %d, want 200", resp.StatusCode)
	}
	if err := srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})
	srv.cfg.Port = ln.Addr().(*net.TCPAddr).Port

	if err := srv.Start(context.Background()); err == nil {
		srv.Close()
		t.Fatal("Start() should fail when the port is already bound")
	}
}

// =============================================================================
// Routes
// =============================================================================

func TestHandleRoot(t *testing.T) {
	srv := testServer(t, simulation.ModeOnOff, staticProvider{testSnapshot(simulation.ModeOnOff)})
	rec := do(t, srv.Handler(), http.MethodGet, "/", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	if !strings.Contains(rec.Body.String(), "/consumo") {
		t.Errorf("body = %q, want a pointer to /consumo", rec.Body.String())
	}
}

func TestHandleConsumo_Wattage(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage,
		staticProvider{testSnapshot(simulation.ModeWattage, 150, 0, 1210, 58, 1490)})
	rec := do(t, srv.Handler(), http.MethodGet, "/consumo", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	entries := decodeEntries(t, rec.Body.Bytes())
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}

	want := catalogIDs()
	for _, e := range entries {
		if got := strings.Join(keysOf(e), ","); got != "consumo_watts,id,timestamp" {
			t.Errorf("entry keys = %s", got)
		}
		id, _ := e["id"].(string)
		if !want[id] {
			t.Errorf("unexpected or duplicate id %q", id)
		}
		delete(want, id)
		if w, _ := e["consumo_watts"].(float64); w < 0 {
			t.Errorf("%s consumo_watts = %v, want >= 0", id, w)
		}
		if ts, _ := e["timestamp"].(string); !timestampPattern.MatchString(ts) {
			t.Errorf("%s timestamp = %q, want ISO-8601 with milliseconds", id, ts)
		}
	}
	if entries[2]["consumo_watts"] != float64(1210) {
		t.Errorf("MICRO-01 consumo_watts = %v, want 1210", entries[2]["consumo_watts"])
	}
}

func TestHandleConsumo_OnOff(t *testing.T) {
	srv := testServer(t, simulation.ModeOnOff,
		staticProvider{testSnapshot(simulation.ModeOnOff, 1, 1, 0, 0, 0)})

	first := decodeEntries(t, do(t, srv.Handler(), http.MethodGet, "/consumo", nil).Body.Bytes())
	second := decodeEntries(t, do(t, srv.Handler(), http.MethodGet, "/consumo", nil).Body.Bytes())

	if len(first) != 5 {
		t.Fatalf("got %d entries, want 5", len(first))
	}

	want := catalogIDs()
	logIDs := map[string]bool{}
	for i, e := range first {
		if got := strings.Join(keysOf(e), ","); got != "LogID,device,timestamp,value" {
			t.Errorf("entry keys = %s", got)
		}

		logID, _ := e["LogID"].(string)
		if _, err := uuid.Parse(logID); err != nil {
			t.Errorf("LogID %q is not a UUID: %v", logID, err)
		}
		logIDs[logID] = true
		logIDs[second[i]["LogID"].(string)] = true

		device, _ := e["device"].(map[string]any)
		id, _ := device["DeviceID"].(string)
		if !want[id] {
			t.Errorf("unexpected or duplicate DeviceID %q", id)
		}
		delete(want, id)

		if v := e["value"]; v != float64(0) && v != float64(1) {
			t.Errorf("%s value = %v, want 0 or 1", id, v)
		}
	}
	if len(logIDs) != 10 {
		t.Errorf("LogIDs across two responses = %d distinct, want 10", len(logIDs))
	}
	if first[1]["value"] != float64(1) {
		t.Errorf("TV-LIV-001 value = %v, want 1", first[1]["value"])
	}
}

func TestHandleConsumo_StatelessShapeIsStable(t *testing.T) {
	sim, err := simulation.New(simulation.Options{Mode: simulation.ModeStateless, Seed: 11})
	if err != nil {
		t.Fatalf("simulation.New() error = %v", err)
	}
	srv := testServer(t, simulation.ModeStateless, sim)

	first := decodeEntries(t, do(t, srv.Handler(), http.MethodGet, "/consumo", nil).Body.Bytes())
	second := decodeEntries(t, do(t, srv.Handler(), http.MethodGet, "/consumo", nil).Body.Bytes())

	if len(first) != 5 || len(second) != 5 {
		t.Fatalf("entry counts = %d, %d, want 5", len(first), len(second))
	}
	for i := range first {
		if got := strings.Join(keysOf(first[i]), ","); got != "consumo_watts,electrodomestico,id,timestamp" {
			t.Errorf("entry keys = %s", got)
		}
		if first[i]["id"] != second[i]["id"] {
			t.Errorf("entry %d id %v then %v", i, first[i]["id"], second[i]["id"])
		}
		if strings.Join(keysOf(first[i]), ",") != strings.Join(keysOf(second[i]), ",") {
			t.Errorf("entry %d keys changed between calls", i)
		}
	}
	if first[0]["electrodomestico"] != "Refrigeradora" {
		t.Errorf("NEV-001 electrodomestico = %v, want Refrigeradora", first[0]["electrodomestico"])
	}
}

func TestHandleConsumoByID(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage,
		staticProvider{testSnapshot(simulation.ModeWattage, 150, 80, 1200, 60, 1500)})

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"known device", "/consumo/AC-DORM-01", http.StatusOK},
		{"unknown device", "/consumo/TOASTER-9", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusNotFound {
				var apiErr Error
				if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
					t.Fatalf("error body is not JSON: %v", err)
				}
				if apiErr.Code != ErrCodeNotFound || apiErr.Status != http.StatusNotFound {
					t.Errorf("error = %+v", apiErr)
				}
				return
			}

			var entry map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if entry["id"] != "AC-DORM-01" || entry["consumo_watts"] != float64(1500) {
				t.Errorf("entry = %v", entry)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/health", nil)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" || body["mode"] != "wattage" {
		t.Errorf("health = %v", body)
	}
}

func TestHandleListDevices(t *testing.T) {
	srv := testServer(t, simulation.ModeOnOff, staticProvider{testSnapshot(simulation.ModeOnOff)})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/devices", nil)

	var body struct {
		Devices []simulation.Device `json:"devices"`
		Count   int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Count != 5 || len(body.Devices) != 5 {
		t.Fatalf("count = %d, devices = %d, want 5", body.Count, len(body.Devices))
	}
	if body.Devices[4].ID != "AC-DORM-01" || body.Devices[4].BaseWatts != 1500 {
		t.Errorf("last device = %+v", body.Devices[4])
	}
}

func TestHandleMetrics(t *testing.T) {
	srv := testServer(t, simulation.ModeOnOff,
		staticProvider{testSnapshot(simulation.ModeOnOff, 1, 0, 1, 0, 0)})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/metrics", nil)

	var m SystemMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if m.Version != "test" || m.Simulation.Mode != "onoff" {
		t.Errorf("metrics = %+v", m)
	}
	if m.Simulation.Tick != 3 || m.Simulation.Devices != 5 || m.Simulation.DevicesOn != 2 {
		t.Errorf("simulation metrics = %+v", m.Simulation)
	}
	if m.Runtime.Goroutines == 0 {
		t.Error("runtime goroutines should be reported")
	}
	if len(m.Exporters) != 2 || m.Exporters[0].Name != "amqp" || m.Exporters[0].Connected || !m.Exporters[1].Connected {
		t.Errorf("exporters = %+v", m.Exporters)
	}
}

func TestPrometheusEndpoint(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})
	h := srv.Handler()

	do(t, h, http.MethodGet, "/consumo", nil)
	rec := do(t, h, http.MethodGet, "/metrics", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `appliancesim_http_request_duration_seconds_count{method="GET",route="/consumo",status="200"} 1`) {
		t.Errorf("exposition missing /consumo latency sample:\n%s", body)
	}
}

func TestPrometheusEndpoint_Disabled(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})
	srv.metricsCfg.Enabled = false

	if rec := do(t, srv.Handler(), http.MethodGet, "/metrics", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when metrics are disabled", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})
	rec := do(t, srv.Handler(), http.MethodGet, "/nope", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

// =============================================================================
// Middleware
// =============================================================================

func TestCORS(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/consumo", http.Header{"Origin": {"https://dashboard.example"}})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	rec = do(t, h, http.MethodOptions, "/consumo", http.Header{"Origin": {"https://dashboard.example"}})
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight should list allowed methods")
	}
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})
	srv.cfg.CORS.AllowedOrigins = []string{"https://allowed.example"}
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/consumo", http.Header{"Origin": {"https://allowed.example"}})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://allowed.example" {
		t.Errorf("allowed origin header = %q", got)
	}

	rec = do(t, h, http.MethodGet, "/consumo", http.Header{"Origin": {"https://evil.example"}})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin header = %q, want empty", got)
	}
}

func TestRequestID(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/", nil)
	if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
		t.Errorf("generated X-Request-ID %q is not a UUID", rec.Header().Get("X-Request-ID"))
	}

	rec = do(t, h, http.MethodGet, "/", http.Header{"X-Request-Id": {"caller-123"}})
	if got := rec.Header().Get("X-Request-ID"); got != "caller-123" {
		t.Errorf("X-Request-ID = %q, want caller-123", got)
	}
}

func TestRecovery(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, panicProvider{})
	rec := do(t, srv.Handler(), http.MethodGet, "/consumo", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var apiErr Error
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if apiErr.Code != ErrCodeInternal {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeInternal)
	}
}

// =============================================================================
// WebSocket
// =============================================================================

func dialWS(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	//nolint:errcheck // test deadline
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("message is not JSON: %v", err)
	}
	return msg
}

func subscribeWS(t *testing.T, conn *websocket.Conn, channels ...string) {
	t.Helper()
	err := conn.WriteJSON(WSMessage{Type: WSTypeSubscribe, ID: "sub-1", Payload: WSSubscribePayload{Channels: channels}})
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

func TestWebSocket_SnapshotBroadcast(t *testing.T) {
	srv := testServer(t, simulation.ModeWattage, staticProvider{testSnapshot(simulation.ModeWattage)})
	conn := dialWS(t, srv)

	subscribeWS(t, conn, ChannelSnapshot)
	if msg := readWS(t, conn); msg.Type != WSTypeResponse || msg.ID != "sub-1" {
		t.Fatalf("subscribe reply = %+v", msg)
	}

	srv.Hub().OnSnapshot(context.Background(), testSnapshot(simulation.ModeWattage, 151, 0, 0, 0, 0))

	msg := readWS(t, conn)
	if msg.Type != WSTypeEvent || msg.EventType != ChannelSnapshot {
		t.Fatalf("event = %+v", msg)
	}
	payload, _ := msg.Payload.(map[string]any)
	consumo, _ := payload["consumo"].([]any)
	if payload["mode"] != "wattage" || len(consumo) != 5 {
		t.Fatalf("payload = %v", payload)
	}
	first, _ := consumo[0].(map[string]any)
	if first["id"] != "NEV-001" || first["consumo_watts"] != float64(151) {
		t.Errorf("first entry = %v", first)
	}
}

func TestWebSocket_ReplaysLatestOnSubscribe(t *testing.T) {
	srv := testServer(t, simulation.ModeOnOff, staticProvider{testSnapshot(simulation.ModeOnOff)})
	srv.Hub().OnSnapshot(context.Background(), testSnapshot(simulation.ModeOnOff, 1))

	conn := dialWS(t, srv)
	subscribeWS(t, conn, ChannelSnapshot)

	if msg := readWS(t, conn); msg.Type != WSTypeResponse {
		t.Fatalf("first message = %+v, want subscribe response", msg)
	}
	if msg := readWS(t, conn); msg.Type != WSTypeEvent || msg.EventType != ChannelSnapshot {
		t.Fatalf("second message = %+v, want replayed snapshot", msg)
	}
}

func TestWebSocket_PingAndUnknownType(t *testing.T) {
	srv := testServer(t, simulation.ModeOnOff, staticProvider{testSnapshot(simulation.ModeOnOff)})
	conn := dialWS(t, srv)

	if err := conn.WriteJSON(WSMessage{Type: WSTypePing, ID: "p1"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if msg := readWS(t, conn); msg.Type != WSTypePong || msg.ID != "p1" {
		t.Errorf("ping reply = %+v", msg)
	}

	if err := conn.WriteJSON(WSMessage{Type: "launch", ID: "x"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if msg := readWS(t, conn); msg.Type != WSTypeError {
		t.Errorf("unknown type reply = %+v, want error", msg)
	}
}

func TestHub_OnlySubscribersReceive(t *testing.T) {
	srv := testServer(t, simulation.ModeOnOff, staticProvider{testSnapshot(simulation.ModeOnOff)})
	conn := dialWS(t, srv)

	subscribeWS(t, conn, "something.else")
	readWS(t, conn)

	srv.Hub().OnSnapshot(context.Background(), testSnapshot(simulation.ModeOnOff))

	//nolint:errcheck // test deadline
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, data, err := conn.ReadMessage(); err == nil {
		t.Errorf("unsubscribed client received %s", data)
	}
}

func TestHub_ClientCount(t *testing.T) {
	srv := testServer(t, simulation.ModeOnOff, staticProvider{testSnapshot(simulation.ModeOnOff)})
	conn := dialWS(t, srv)

	// A round trip guarantees the server registered the client.
	if err := conn.WriteJSON(WSMessage{Type: WSTypePing}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	readWS(t, conn)

	if got := srv.Hub().ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv.Hub().Run(ctx)
	if got := srv.Hub().ClientCount(); got != 0 {
		t.Errorf("ClientCount() after Run stop = %d, want 0", got)
	}
}
