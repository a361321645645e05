// Package influxdb provides InfluxDB connectivity for RoofSentry.
//
// It wraps the official influxdb-client-go v2 library with patterns for
// connection management, telemetry writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Safety state per evaluation cycle (safe/unsafe, overrides)
//   - Solar elevation for the site
//   - Classifier latency and cycle success rates
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "observatory",
//	    Bucket: "roofsentry",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteSafetyState("ashdown-ridge", "CLOSED", true, false)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via a
// callback. Connection and health check errors are returned directly.
// Telemetry is best-effort: a failed write never influences a safety
// decision.
package influxdb
