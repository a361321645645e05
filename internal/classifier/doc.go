// Package classifier bridges the external image predictor into the
// safety engine.
//
// An all-sky camera drops PNG captures into a monitored folder; each
// poll cycle this package picks the newest capture by modification time
// and hands it to the configured predictor executable, which prints
// OPEN or CLOSED. Training and validating that predictor happens
// elsewhere - from this side it is a black box with a one-word answer.
//
// All failure modes (missing folder, no captures, predictor crash or
// timeout, garbage output) surface as sentinel errors that the safety
// engine converts into a fail-safe CLOSED verdict.
package classifier
