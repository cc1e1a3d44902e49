package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementReadings is the measurement every appliance reading goes to.
const MeasurementReadings = "appliance_readings"

// WriteReading records one appliance reading at ts.
//
// value is 0/1 in on/off mode and watts otherwise; mode is kept as a tag so
// both kinds of series can share the measurement.
//
//	client.WriteReading("NEV-001", "refrigerator", "wattage", 152, ts)
func (c *Client) WriteReading(deviceID, kind, mode string, value float64, ts time.Time) {
	c.WritePointWithTime(MeasurementReadings,
		map[string]string{
			"device_id": deviceID,
			"kind":      kind,
			"mode":      mode,
		},
		map[string]any{
			"value": value,
		},
		ts,
	)
}

// WritePointWithTime writes a point with explicit tags, fields and timestamp.
// Writes on a closed or unconnected client are dropped.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
