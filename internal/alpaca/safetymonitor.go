package alpaca

import (
	"fmt"
	"net/http"
	"time"
)

// statusValue is the composite payload of the status endpoint.
// SunAngle is a display string, "N/A" when no reading exists.
type statusValue struct {
	IsSafe     bool   `json:"IsSafe"`
	RoofStatus string `json:"RoofStatus"`
	SunAngle   string `json:"SunAngle"`
	LastUpdate string `json:"LastUpdate"`
	LastError  string `json:"LastError"`
}

// handleIsSafe reports the authoritative safety verdict. The last
// cycle error rides along in ErrorMessage with ErrorNumber 0, so
// clients see the verdict and the degradation reason in one response.
func (s *Server) handleIsSafe(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	snap := s.state.Snapshot()
	s.writeEnvelope(w, p, snap.IsSafe, 0, snap.LastError)
}

// handleStatus reports the full decision snapshot for dashboards.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	snap := s.state.Snapshot()

	roofStatus := "UNKNOWN"
	if !snap.Decision.EvaluatedAt.IsZero() {
		roofStatus = string(snap.Decision.Final)
	}

	sunAngle := "N/A"
	if snap.Decision.SunAngleOK {
		sunAngle = fmt.Sprintf("%.1f°", snap.Decision.SunAngle)
	}

	s.writeValue(w, p, statusValue{
		IsSafe:     snap.IsSafe,
		RoofStatus: roofStatus,
		SunAngle:   sunAngle,
		LastUpdate: formatTimestamp(snap.LastUpdate),
		LastError:  snap.LastError,
	})
}

// handleLastUpdate reports when the poller last completed a cycle.
func (s *Server) handleLastUpdate(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, formatTimestamp(s.state.Snapshot().LastUpdate))
}

// formatTimestamp renders a poller timestamp for clients. Before the
// first cycle there is nothing to report.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
