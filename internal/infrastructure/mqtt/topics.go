package mqtt

// Topic prefixes for RoofSentry MQTT messages.
//
// All topics live under a single "roofsentry" root so that observatory
// brokers shared with other services stay tidy:
//
//	roofsentry/system/status   - online/offline availability (retained)
//	roofsentry/safety/state    - current safety state (retained)
//	roofsentry/safety/decision - per-cycle decision events (not retained)
const (
	// TopicPrefixRoot is the base for all RoofSentry topics.
	TopicPrefixRoot = "roofsentry"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "roofsentry/system"

	// TopicPrefixSafety is the base for safety topics.
	TopicPrefixSafety = "roofsentry/safety"
)

// Topics provides builders for RoofSentry MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.SafetyState()
//	// Returns: "roofsentry/safety/state"
type Topics struct{}

// SystemStatus returns the topic for service availability messages.
// Published retained on connect and shutdown; also the LWT topic.
//
// Topic: roofsentry/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// SafetyState returns the topic for the current safety state.
// Published retained after every evaluation cycle so new subscribers
// immediately see the latest state.
//
// Topic: roofsentry/safety/state
func (Topics) SafetyState() string {
	return TopicPrefixSafety + "/state"
}

// SafetyDecision returns the topic for per-cycle decision events.
// Published non-retained; carries the full decision detail (sun angle,
// raw classifier output, override flag) for logging and dashboards.
//
// Topic: roofsentry/safety/decision
func (Topics) SafetyDecision() string {
	return TopicPrefixSafety + "/decision"
}
