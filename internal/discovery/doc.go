// Package discovery implements the Alpaca UDP discovery responder.
//
// Client software broadcasts a probe ("alpacadiscovery1") to UDP port
// 32227; every Alpaca server on the network answers with a small JSON
// announcement naming its HTTP port. That is the whole protocol - no
// registration, no state, no retransmission.
//
// Discovery is a convenience, not a dependency: if the port cannot be
// bound the rest of the system starts normally and clients configure
// the address by hand.
package discovery
