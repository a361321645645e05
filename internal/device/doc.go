// Package device holds the shared state and identity of the exposed
// Alpaca safety monitor.
//
// State is the single synchronisation point between the three
// long-lived activities in the process: HTTP request handlers read it,
// the background poller writes it, and the websocket event stream
// subscribes to it. The server transaction counter also lives here so
// every response across every endpoint draws from one strictly
// increasing sequence.
//
// Info is the static device identity (name, unique ID, driver version)
// reported through the management and common device endpoints.
package device
