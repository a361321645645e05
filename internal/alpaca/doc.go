// Package alpaca implements the ASCOM Alpaca HTTP API for the safety
// monitor device.
//
// The server exposes the management endpoints, the common device
// endpoints and the SafetyMonitor-specific endpoints, every response
// wrapped in the standard Alpaca envelope with transaction bookkeeping.
// Unrecognised paths and methods are answered with a well-formed
// envelope carrying ErrorNumber 1 rather than a bare HTTP 404, which is
// what ASCOM clients expect from a conforming device.
//
// Two non-protocol routes ride alongside the API: /setup serves a
// human-readable status page for manual verification, and /api/events
// streams device-state snapshots over WebSocket.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := alpaca.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package alpaca
