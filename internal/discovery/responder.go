package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
)

// discoveryMagic is the payload prefix every Alpaca discovery probe
// carries. Anything else is silently ignored.
const discoveryMagic = "alpacadiscovery1"

// maxProbeSize bounds a single discovery datagram read.
const maxProbeSize = 1024

// Announcement is the JSON reply to a discovery probe. Field names are
// fixed by the Alpaca discovery contract.
type Announcement struct {
	AlpacaPort          int    `json:"AlpacaPort"`
	ServerName          string `json:"ServerName"`
	Manufacturer        string `json:"Manufacturer"`
	ManufacturerVersion string `json:"ManufacturerVersion"`
	Location            string `json:"Location"`
}

// Responder answers Alpaca discovery broadcasts on a UDP port so that
// client software can find the safety monitor without configuration.
//
// The responder binds once per process lifetime; closing the socket is
// the cancellation mechanism.
type Responder struct {
	announcement Announcement
	port         int
	conn         net.PacketConn
	logger       *logging.Logger
}

// New creates a discovery responder.
//
// Parameters:
//   - port: UDP port to listen on (32227 per the Alpaca standard)
//   - announcement: Reply sent to every valid probe
//   - logger: Structured logger
func New(port int, announcement Announcement, logger *logging.Logger) *Responder {
	return &Responder{
		announcement: announcement,
		port:         port,
		logger:       logger,
	}
}

// Start binds the UDP socket and begins answering probes in a
// background goroutine.
//
// A bind failure (port already in use) is returned to the caller, who
// should treat it as non-fatal: the control API works without
// discovery, clients just have to be configured manually.
//
// Returns:
//   - error: If the socket cannot be bound
func (r *Responder) Start() error {
	conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", r.port))
	if err != nil {
		return fmt.Errorf("binding discovery socket: %w", err)
	}
	r.conn = conn

	r.logger.Info("discovery responder started", "port", r.port)
	go r.serve()

	return nil
}

// serve answers probes until the socket is closed.
func (r *Responder) serve() {
	buf := make([]byte, maxProbeSize)

	for {
		n, addr, err := r.conn.ReadFrom(buf)
		if err != nil {
			// Socket closure is the shutdown signal, not a failure.
			if !errors.Is(err, net.ErrClosed) {
				r.logger.Error("discovery read failed", "error", err)
			}
			return
		}

		if n < len(discoveryMagic) || string(buf[:len(discoveryMagic)]) != discoveryMagic {
			continue
		}

		r.logger.Debug("discovery request", "from", addr.String())

		reply, err := json.Marshal(r.announcement)
		if err != nil {
			r.logger.Error("encoding discovery announcement failed", "error", err)
			continue
		}

		if _, err := r.conn.WriteTo(reply, addr); err != nil {
			r.logger.Warn("sending discovery reply failed", "to", addr.String(), "error", err)
		}
	}
}

// Addr returns the bound socket address, or nil before Start.
func (r *Responder) Addr() net.Addr {
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

// Close stops the responder by closing its socket.
// Safe to call when Start never succeeded.
func (r *Responder) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
