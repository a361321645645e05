package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// boolToInt converts a bool to the 0/1 field value used for graphing.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WriteSafetyState writes the outcome of a safety evaluation cycle.
//
// This is the primary telemetry method, called once per poll cycle.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - siteID: Site identifier tag (e.g., "ashdown-ridge")
//   - roofStatus: Roof status after any override ("OPEN" or "CLOSED")
//   - isSafe: Whether imaging is currently safe
//   - overridden: Whether the sun override demoted an OPEN reading
//
// Example:
//
//	client.WriteSafetyState("ashdown-ridge", "CLOSED", true, false)
func (c *Client) WriteSafetyState(siteID string, roofStatus string, isSafe bool, overridden bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"safety_state",
		map[string]string{
			"site":        siteID,
			"roof_status": roofStatus,
		},
		map[string]interface{}{
			"is_safe":    boolToInt(isSafe),
			"overridden": boolToInt(overridden),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSunAngle writes the computed solar elevation for the site.
//
// Graphed alongside safety_state this shows why the monitor flipped:
// the sun crossing the configured threshold is visible directly.
//
// Parameters:
//   - siteID: Site identifier tag
//   - degrees: Solar elevation above the horizon in degrees
func (c *Client) WriteSunAngle(siteID string, degrees float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sun_angle",
		map[string]string{
			"site": siteID,
		},
		map[string]interface{}{
			"elevation_deg": degrees,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCycleMetric writes operational telemetry for an evaluation cycle.
//
// Used for tracking classifier latency and failure rates.
//
// Parameters:
//   - siteID: Site identifier tag
//   - durationMs: Total evaluation duration in milliseconds
//   - success: Whether the cycle completed without error
func (c *Client) WriteCycleMetric(siteID string, durationMs float64, success bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"evaluation_cycle",
		map[string]string{
			"site": siteID,
		},
		map[string]interface{}{
			"duration_ms": durationMs,
			"success":     boolToInt(success),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "obs-pi-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., backfilled data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
