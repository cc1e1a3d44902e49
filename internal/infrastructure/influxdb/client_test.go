package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/appliance-sim/internal/infrastructure/config"
	"github.com/nerrad567/appliance-sim/internal/infrastructure/influxdb"
)

// fakeInflux answers /ping and records line protocol sent to /api/v2/write.
type fakeInflux struct {
	mu     sync.Mutex
	pings  int
	writes []string

	// failPings makes the first n pings fail with 503.
	failPings int
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/ping":
		f.pings++
		if f.pings <= f.failPings {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		f.writes = append(f.writes, string(body))
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeInflux) body() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.writes, "\n")
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:        true,
		URL:            url,
		Token:          "appliancesim-dev-token",
		Org:            "appliancesim",
		Bucket:         "readings",
		BatchSize:      100,
		FlushInterval:  1,
		ConnectTimeout: 5,
	}
}

func newFake(t *testing.T, fake *fakeInflux) string {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestConnect(t *testing.T) {
	fake := &fakeInflux{}
	client, err := influxdb.Connect(context.Background(), testConfig(newFake(t, fake)))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestConnect_RetriesUntilHealthy(t *testing.T) {
	fake := &fakeInflux{failPings: 2}
	client, err := influxdb.Connect(context.Background(), testConfig(newFake(t, fake)))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.pings < 3 {
		t.Errorf("pings = %d, want at least 3", fake.pings)
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:59999")
	cfg.ConnectTimeout = 1

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := influxdb.Connect(ctx, testConfig("http://127.0.0.1:59999"))
	if err == nil {
		t.Fatal("Connect() should fail with a cancelled context")
	}
}

func TestHealthCheck(t *testing.T) {
	client, err := influxdb.Connect(context.Background(), testConfig(newFake(t, &fakeInflux{})))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	client.Close()
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v, want ErrNotConnected", err)
	}
}

func TestWriteReading(t *testing.T) {
	fake := &fakeInflux{}
	client, err := influxdb.Connect(context.Background(), testConfig(newFake(t, fake)))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	var writeErr error
	var mu sync.Mutex
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})

	ts := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	client.WriteReading("NEV-001", "refrigerator", "wattage", 152, ts)
	client.Flush()

	deadline := time.Now().Add(3 * time.Second)
	for fake.body() == "" && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	body := fake.body()
	for _, want := range []string{
		influxdb.MeasurementReadings + ",",
		"device_id=NEV-001",
		"kind=refrigerator",
		"mode=wattage",
		"value=152",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("line protocol %q missing %q", body, want)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		t.Errorf("write error = %v", writeErr)
	}
}

func TestWrite_UnconnectedClientIsNoop(t *testing.T) {
	var client influxdb.Client

	client.WriteReading("NEV-001", "refrigerator", "onoff", 1, time.Now())
	client.Flush()

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
