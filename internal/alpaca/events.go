package alpaca

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ashdown-obs/roofsentry/internal/device"
)

// WebSocket timing constants.
const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// upgrader configures the WebSocket upgrader for the event stream.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// The stream is read-only state already served on /setup.
		return true
	},
}

// stateEvent is one device-state snapshot on the event stream.
type stateEvent struct {
	Connected  bool     `json:"connected"`
	IsSafe     bool     `json:"is_safe"`
	RoofStatus string   `json:"roof_status"`
	SunAngle   *float64 `json:"sun_angle,omitempty"`
	Overridden bool     `json:"overridden"`
	LastUpdate string   `json:"last_update,omitempty"`
	LastError  string   `json:"last_error,omitempty"`
}

// buildStateEvent converts a snapshot into its wire form.
func buildStateEvent(snap device.Snapshot) stateEvent {
	event := stateEvent{
		Connected:  snap.Connected,
		IsSafe:     snap.IsSafe,
		Overridden: snap.Decision.Overridden,
		LastUpdate: formatTimestamp(snap.LastUpdate),
		LastError:  snap.LastError,
	}

	event.RoofStatus = "UNKNOWN"
	if !snap.Decision.EvaluatedAt.IsZero() {
		event.RoofStatus = string(snap.Decision.Final)
	}
	if snap.Decision.SunAngleOK {
		angle := snap.Decision.SunAngle
		event.SunAngle = &angle
	}

	return event
}

// handleEvents streams device-state snapshots over WebSocket.
//
// Each client gets the current snapshot immediately, then one message
// per state change. Slow clients miss intermediate updates rather than
// blocking the poller; the next change carries the full state anyway.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	//nolint:errcheck // Best-effort close on handler exit
	defer conn.Close()

	updates := s.state.Subscribe()
	defer s.state.Unsubscribe(updates)

	// Reader goroutine: the client never sends data, but reading is
	// what surfaces close frames and dead connections.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.writeEvent(conn, s.state.Snapshot()); err != nil {
		return
	}

	pings := time.NewTicker(wsPingInterval)
	defer pings.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := s.writeEvent(conn, snap); err != nil {
				return
			}
		case <-pings.C:
			//nolint:errcheck // Failed pings surface as read errors
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// writeEvent sends one snapshot to the client with a bounded deadline.
func (s *Server) writeEvent(conn *websocket.Conn, snap device.Snapshot) error {
	//nolint:errcheck // Deadline failures surface on the write itself
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(buildStateEvent(snap))
}
