// Package safety implements the safety decision engine: the logic that
// turns independent signals (image classification, solar elevation, an
// optional hardware cross-check) into one authoritative "safe to image"
// verdict.
//
// The rules are deliberately asymmetric. Anything that goes wrong - a
// missing classifier verdict, a failed sun calculation, an absent
// cross-check - degrades towards CLOSED/unsafe. The only way to reach
// IsSafe=true is a positive OPEN classification with the sun strictly
// below the configured threshold.
//
// Every decision is appended to the status log file, which is the
// durable system-of-record for downstream consumers, and optionally
// recorded to SQLite (History) for diagnostics.
package safety
