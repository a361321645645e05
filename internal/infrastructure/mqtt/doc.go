// Package mqtt provides the MQTT publishing client for RoofSentry.
//
// RoofSentry publishes its availability and the current safety state so
// that other observatory services (dome controllers, dashboards, home
// automation) can react without polling the Alpaca API. The client is
// publish-only: roof commands stay with the dedicated roof controller.
//
// Topics:
//   - roofsentry/system/status: online/offline availability (retained, LWT)
//   - roofsentry/safety/state: current safety state (retained)
//   - roofsentry/safety/decision: per-cycle decision events
//
// The client reconnects automatically with exponential backoff. A Last
// Will and Testament message marks the monitor offline on unexpected
// disconnect - subscribers should treat that as unsafe.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.SafetyState()
//	client.PublishRetained(topic, payload)
package mqtt
