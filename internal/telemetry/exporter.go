package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/appliance-sim/internal/infrastructure/mqtt"
	"github.com/nerrad567/appliance-sim/internal/simulation"
)

// Exporter names, used as log attributes and metric labels.
const (
	ExporterMQTT     = "mqtt"
	ExporterInfluxDB = "influxdb"
	ExporterAMQP     = "amqp"
)

// Logger is the logging interface exporters report failures to.
type Logger interface {
	Warn(msg string, args ...any)
}

// FailureObserver counts export failures. *Collector implements it.
type FailureObserver interface {
	ObserveExportFailure(exporter string)
}

// reporter logs and counts export failures.
type reporter struct {
	name     string
	logger   Logger
	failures FailureObserver
}

func (r reporter) fail(err error, args ...any) {
	if r.failures != nil {
		r.failures.ObserveExportFailure(r.name)
	}
	if r.logger != nil {
		r.logger.Warn("snapshot export failed", append([]any{"exporter", r.name, "error", err}, args...)...)
	}
}

// deviceState is the retained per-device MQTT payload.
type deviceState struct {
	simulation.Reading
	Mode simulation.Mode `json:"mode"`
}

// MQTTPublisher is the subset of *mqtt.Client the MQTT exporter needs.
type MQTTPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTExporter publishes each snapshot whole and each reading as retained
// per-device state.
type MQTTExporter struct {
	pub    MQTTPublisher
	topics mqtt.Topics
	qos    byte
	reporter
}

// NewMQTTExporter creates an MQTT exporter.
func NewMQTTExporter(pub MQTTPublisher, topics mqtt.Topics, qos byte, logger Logger, failures FailureObserver) *MQTTExporter {
	return &MQTTExporter{
		pub:      pub,
		topics:   topics,
		qos:      qos,
		reporter: reporter{name: ExporterMQTT, logger: logger, failures: failures},
	}
}

// OnSnapshot implements simulation.Listener.
func (e *MQTTExporter) OnSnapshot(_ context.Context, snap *simulation.Snapshot) {
	for _, r := range snap.Readings {
		body, err := json.Marshal(deviceState{Reading: r, Mode: snap.Mode})
		if err != nil {
			e.fail(fmt.Errorf("encode device state: %w", err), "device_id", r.DeviceID)
			continue
		}
		if err := e.pub.Publish(e.topics.DeviceState(r.DeviceID), body, e.qos, true); err != nil {
			e.fail(err, "device_id", r.DeviceID)
			// The connection is most likely down; skip the remaining devices.
			return
		}
	}

	body, err := json.Marshal(snap)
	if err != nil {
		e.fail(fmt.Errorf("encode snapshot: %w", err))
		return
	}
	if err := e.pub.Publish(e.topics.Consumo(), body, e.qos, false); err != nil {
		e.fail(err, "tick", snap.Tick)
	}
}

// ReadingWriter is the subset of *influxdb.Client the Influx exporter needs.
type ReadingWriter interface {
	WriteReading(deviceID, kind, mode string, value float64, ts time.Time)
}

// InfluxExporter writes one point per reading. Writes are batched by the
// client, so failures surface through its error callback, not here.
type InfluxExporter struct {
	w ReadingWriter
}

// NewInfluxExporter creates an InfluxDB exporter.
func NewInfluxExporter(w ReadingWriter) *InfluxExporter {
	return &InfluxExporter{w: w}
}

// OnSnapshot implements simulation.Listener.
func (e *InfluxExporter) OnSnapshot(_ context.Context, snap *simulation.Snapshot) {
	for _, r := range snap.Readings {
		e.w.WriteReading(r.DeviceID, string(r.Kind), string(snap.Mode), float64(r.Value), r.Timestamp)
	}
}

// AMQPPublisher is the subset of *amqp.Publisher the AMQP exporter needs.
type AMQPPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// AMQPExporter publishes each snapshot as JSON, routed by mode.
type AMQPExporter struct {
	pub     AMQPPublisher
	timeout time.Duration
	reporter
}

// NewAMQPExporter creates an AMQP exporter. Each publish is bounded by timeout.
func NewAMQPExporter(pub AMQPPublisher, timeout time.Duration, logger Logger, failures FailureObserver) *AMQPExporter {
	return &AMQPExporter{
		pub:      pub,
		timeout:  timeout,
		reporter: reporter{name: ExporterAMQP, logger: logger, failures: failures},
	}
}

// OnSnapshot implements simulation.Listener.
func (e *AMQPExporter) OnSnapshot(ctx context.Context, snap *simulation.Snapshot) {
	body, err := json.Marshal(snap)
	if err != nil {
		e.fail(fmt.Errorf("encode snapshot: %w", err))
		return
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if err := e.pub.Publish(ctx, string(snap.Mode), body); err != nil {
		e.fail(err, "tick", snap.Tick)
	}
}
