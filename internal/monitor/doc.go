// Package monitor contains the background poller that keeps the device
// state current.
//
// Every cycle the poller either runs a full safety evaluation (while a
// client is connected) or fails open (while disconnected), publishes
// the result into device.State, and fans the decision out to
// best-effort recorders: SQLite history, InfluxDB telemetry and the
// MQTT broker. Recorder failures are logged and absorbed; the verdict
// path never depends on them.
package monitor
