package api

import (
	"net/http"
	"runtime"
	"sort"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string            `json:"timestamp"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Runtime       RuntimeMetrics    `json:"runtime"`
	WebSocket     WSMetrics         `json:"websocket"`
	Simulation    SimulationMetrics `json:"simulation"`
	Exporters     []ExporterMetrics `json:"exporters"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// SimulationMetrics describes the snapshot a reader would see now.
// Interval and dropped counts are zero in stateless mode.
type SimulationMetrics struct {
	Mode             string  `json:"mode"`
	Tick             uint64  `json:"tick"`
	Devices          int     `json:"devices"`
	DevicesOn        int     `json:"devices_on"`
	IntervalSeconds  float64 `json:"interval_seconds"`
	SnapshotsDropped uint64  `json:"snapshots_dropped"`
}

// ExporterMetrics reports one outbound exporter's connection state.
type ExporterMetrics struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// handleMetrics returns runtime and simulation metrics as JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := s.provider.Current()

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Simulation: SimulationMetrics{
			Mode:      string(snap.Mode),
			Tick:      snap.Tick,
			Devices:   len(snap.Readings),
			DevicesOn: snap.OnCount(),
		},
		Exporters: make([]ExporterMetrics, 0, len(s.exporters)),
	}

	if s.updater != nil {
		metrics.Simulation.IntervalSeconds = s.updater.Interval().Seconds()
		metrics.Simulation.SnapshotsDropped = s.updater.Dropped()
	}

	for name, exp := range s.exporters {
		metrics.Exporters = append(metrics.Exporters, ExporterMetrics{Name: name, Connected: exp.IsConnected()})
	}
	sort.Slice(metrics.Exporters, func(i, j int) bool {
		return metrics.Exporters[i].Name < metrics.Exporters[j].Name
	})

	writeJSON(w, http.StatusOK, metrics)
}
