package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/appliance-sim/internal/simulation"
)

const namespace = "appliancesim"

// Collector exposes simulator state as Prometheus metrics.
//
// It owns its registry so several collectors (one per test) never clash on
// the global default registerer.
type Collector struct {
	registry *prometheus.Registry

	ticks          prometheus.Counter
	deviceValue    *prometheus.GaugeVec
	devicesOn      prometheus.Gauge
	dropped        prometheus.Counter
	exportFailures *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec

	mu       sync.Mutex
	lastTick uint64
}

// NewCollector creates a collector with Go runtime and process metrics
// registered alongside the simulator's own.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Update ticks published by the simulator.",
		}),
		deviceValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_value",
			Help:      "Latest reading per appliance: 0/1 in onoff mode, watts otherwise.",
		}, []string{"device_id", "kind"}),
		devicesOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices_on",
			Help:      "Appliances drawing power in the latest snapshot.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_dropped_total",
			Help:      "Snapshots discarded because listeners fell behind.",
		}),
		exportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_failures_total",
			Help:      "Failed snapshot exports by exporter.",
		}, []string{"exporter"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"method", "route", "status"}),
	}

	c.registry.MustRegister(
		c.ticks, c.deviceValue, c.devicesOn, c.dropped, c.exportFailures, c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// OnSnapshot implements simulation.Listener.
//
// ticks_total advances by the tick delta, so ticks whose snapshots were
// dropped before reaching listeners are still counted.
func (c *Collector) OnSnapshot(_ context.Context, snap *simulation.Snapshot) {
	c.mu.Lock()
	if snap.Tick > c.lastTick {
		c.ticks.Add(float64(snap.Tick - c.lastTick))
		c.lastTick = snap.Tick
	}
	c.mu.Unlock()

	for _, r := range snap.Readings {
		c.deviceValue.WithLabelValues(r.DeviceID, string(r.Kind)).Set(float64(r.Value))
	}
	c.devicesOn.Set(float64(snap.OnCount()))
}

// ObserveDrop counts one dropped snapshot. Pass it to Updater.SetOnDrop.
func (c *Collector) ObserveDrop() {
	c.dropped.Inc()
}

// ObserveExportFailure counts one failed export.
func (c *Collector) ObserveExportFailure(exporter string) {
	c.exportFailures.WithLabelValues(exporter).Inc()
}

// ObserveRequest records one served HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
