// Package influxdb mirrors appliance readings into InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library with connection retry,
// batched non-blocking writes and health checks. Each reading becomes one
// point in the appliance_readings measurement, tagged with device_id, kind
// and mode.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteReading("NEV-001", "refrigerator", "wattage", 152, time.Now())
//
// # Error Handling
//
// Writes are batched according to batch_size and flush_interval. Batch
// failures arrive asynchronously through SetOnError, wrapped in
// ErrWriteFailed. Connection and health check errors are returned directly.
package influxdb
