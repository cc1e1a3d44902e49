// Package telemetry turns published snapshots into metrics and outbound
// messages.
//
// Every type here implements simulation.Listener and runs on the Updater's
// dispatch goroutine:
//
//	Updater ──► Collector       Prometheus gauges and counters
//	        ├─► MQTTExporter    retained device state + consumo topic
//	        ├─► InfluxExporter  appliance_readings points
//	        └─► AMQPExporter    fanout exchange, routing key = mode
//
// Exporters depend on narrow publisher interfaces rather than the concrete
// infrastructure clients. Failures are logged and counted, never returned.
package telemetry
