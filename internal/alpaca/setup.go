package alpaca

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/astro"
	"github.com/ashdown-obs/roofsentry/internal/safety"
)

// setupRecentLimit caps the decision history shown on the setup page.
const setupRecentLimit = 10

var setupTemplate = template.Must(template.New("setup").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>{{.DeviceName}} Setup</title>
	<meta http-equiv="refresh" content="30">
	<style>
		body { font-family: Arial, sans-serif; margin: 40px; }
		.info { background: #e7f3ff; padding: 15px; border-radius: 5px; margin: 10px 0; }
		.status { background: #d4edda; padding: 10px; border-radius: 5px; margin: 10px 0; }
		.unsafe { background: #f8d7da; }
		table { border-collapse: collapse; width: 100%; }
		th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
		th { background-color: #f2f2f2; }
	</style>
</head>
<body>
	<h1>{{.DeviceName}}</h1>
	<div class="info">
		<h3>Device Information</h3>
		<table>
			<tr><th>Property</th><th>Value</th></tr>
			<tr><td>Device Name</td><td>{{.DeviceName}}</td></tr>
			<tr><td>Device Type</td><td>SafetyMonitor</td></tr>
			<tr><td>Device Number</td><td>{{.DeviceNumber}}</td></tr>
			<tr><td>Port</td><td>{{.Port}}</td></tr>
			<tr><td>API Version</td><td>1</td></tr>
			<tr><td>Driver Version</td><td>{{.DriverVersion}}</td></tr>
			<tr><td>Unique ID</td><td>{{.UniqueID}}</td></tr>
		</table>
	</div>

	<div class="status{{if not .IsSafe}} unsafe{{end}}">
		<h3>Current Status</h3>
		<p><strong>Connected:</strong> {{.Connected}}</p>
		<p><strong>Safe:</strong> {{.IsSafe}}</p>
		<p><strong>Roof:</strong> {{.RoofStatus}}</p>
		<p><strong>Sun Angle:</strong> {{.SunAngle}}</p>
		<p><strong>Last Update:</strong> {{.LastUpdate}}</p>
		{{if .LastError}}<p><strong>Last Error:</strong> {{.LastError}}</p>{{end}}
	</div>

	<div class="info">
		<h3>Observation Window</h3>
		<p>{{.Window}}</p>
		{{if .Threshold}}<p><strong>Sun Threshold:</strong> {{.Threshold}}</p>{{end}}
		<p>All times UTC.</p>
	</div>

	<div class="info">
		<h3>NINA Setup Instructions</h3>
		<ol>
			<li>In NINA, go to Equipment &rarr; Safety Monitor</li>
			<li>Choose "ASCOM" as the safety monitor type</li>
			<li>Select "Alpaca Safety Monitor" or use discovery</li>
			<li>Set IP address to: <strong>localhost</strong> (or this computer's IP)</li>
			<li>Set port to: <strong>{{.Port}}</strong></li>
			<li>Set device number to: <strong>{{.DeviceNumber}}</strong></li>
			<li>Click "Connect"</li>
		</ol>
	</div>

	{{if .Recent}}
	<div class="info">
		<h3>Recent Decisions</h3>
		<table>
			<tr><th>Time (UTC)</th><th>Roof</th><th>Sun Angle</th><th>Safe</th><th>Overridden</th></tr>
			{{range .Recent}}
			<tr><td>{{.When}}</td><td>{{.Roof}}</td><td>{{.SunAngle}}</td><td>{{.Safe}}</td><td>{{.Overridden}}</td></tr>
			{{end}}
		</table>
	</div>
	{{end}}

	<div class="info">
		<h3>API Endpoints</h3>
		<ul>
			<li><a href="/management/apiversions">/management/apiversions</a></li>
			<li><a href="/management/v1/description">/management/v1/description</a></li>
			<li><a href="/management/v1/configureddevices">/management/v1/configureddevices</a></li>
			<li><a href="/api/v1/safetymonitor/{{.DeviceNumber}}/issafe">/api/v1/safetymonitor/{{.DeviceNumber}}/issafe</a></li>
			<li><a href="/api/v1/safetymonitor/{{.DeviceNumber}}/status">/api/v1/safetymonitor/{{.DeviceNumber}}/status</a></li>
		</ul>
	</div>
</body>
</html>
`))

// setupData feeds the setup page template.
type setupData struct {
	DeviceName    string
	DeviceNumber  int
	Port          int
	DriverVersion string
	UniqueID      string

	Connected  bool
	IsSafe     bool
	RoofStatus string
	SunAngle   string
	LastUpdate string
	LastError  string

	Window    string
	Threshold string
	Recent    []recentDecision
}

// recentDecision is one row of the setup page history table.
type recentDecision struct {
	When       string
	Roof       string
	SunAngle   string
	Safe       bool
	Overridden bool
}

// handleSetup serves the human-readable status page. It sits outside
// the protocol contract and carries no transaction semantics.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()

	roofStatus := "UNKNOWN"
	if !snap.Decision.EvaluatedAt.IsZero() {
		roofStatus = string(snap.Decision.Final)
	}
	sunAngle := "N/A"
	if snap.Decision.SunAngleOK {
		sunAngle = fmt.Sprintf("%.1f°", snap.Decision.SunAngle)
	}

	data := setupData{
		DeviceName:    s.info.Name,
		DeviceNumber:  s.info.Number,
		Port:          s.cfg.Port,
		DriverVersion: s.info.DriverVersion,
		UniqueID:      s.info.UniqueID,
		Connected:     snap.Connected,
		IsSafe:        snap.IsSafe,
		RoofStatus:    roofStatus,
		SunAngle:      sunAngle,
		LastUpdate:    formatTimestamp(snap.LastUpdate),
		LastError:     snap.LastError,
		Window:        s.windowForecast(time.Now().UTC()),
		Recent:        s.recentDecisions(r.Context()),
	}
	if s.windows != nil {
		data.Threshold = describeThreshold(s.windows.Threshold)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := setupTemplate.Execute(w, data); err != nil {
		s.logger.Warn("setup page render failed", "error", err)
	}
}

// windowForecast renders the observation window line for the page.
func (s *Server) windowForecast(now time.Time) string {
	if s.windows == nil {
		return "Observation Window: not configured"
	}

	window, err := s.windows.Compute(now)
	if err != nil {
		s.logger.Warn("observation window calculation failed", "error", err)
		return "Observation Window: Error calculating"
	}
	return formatWindow(window)
}

// formatWindow renders a window result as a single display line, all
// times UTC.
func formatWindow(w astro.Window) string {
	const clock = "15:04 UTC"

	switch w.Kind {
	case astro.WindowAlwaysSafe:
		return "Observation Window: Always safe at this location/time"
	case astro.WindowNeverSafe:
		return "Observation Window: Never safe at this location/time"
	case astro.WindowCurrent:
		return fmt.Sprintf("Current Window: Now → %s", w.End.UTC().Format(clock))
	case astro.WindowNext:
		return fmt.Sprintf("Next Window: %s → %s", w.Start.UTC().Format(clock), w.End.UTC().Format(clock))
	default:
		return "Observation Window: Unknown"
	}
}

// describeThreshold renders the sun elevation threshold, naming the
// twilight preset when the configured value matches one.
func describeThreshold(degrees float64) string {
	switch degrees {
	case astro.CivilTwilight:
		return fmt.Sprintf("%.1f° (civil twilight)", degrees)
	case astro.NauticalTwilight:
		return fmt.Sprintf("%.1f° (nautical twilight)", degrees)
	case astro.AstronomicalTwilight:
		return fmt.Sprintf("%.1f° (astronomical twilight)", degrees)
	default:
		return fmt.Sprintf("%.1f°", degrees)
	}
}

// recentDecisions loads the latest persisted decisions, or nil when
// history is disabled or unavailable.
func (s *Server) recentDecisions(ctx context.Context) []recentDecision {
	if s.history == nil {
		return nil
	}

	entries, err := s.history.Recent(ctx, setupRecentLimit)
	if err != nil {
		s.logger.Warn("decision history unavailable for setup page", "error", err)
		return nil
	}

	rows := make([]recentDecision, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, recentDecision{
			When:       e.Decision.EvaluatedAt.UTC().Format("2006-01-02 15:04:05"),
			Roof:       string(e.Decision.Final),
			SunAngle:   formatSunAngle(e.Decision),
			Safe:       e.Decision.IsSafe,
			Overridden: e.Decision.Overridden,
		})
	}
	return rows
}

// formatSunAngle renders the sun angle column of the history table.
func formatSunAngle(d safety.Decision) string {
	if !d.SunAngleOK {
		return "N/A"
	}
	return fmt.Sprintf("%.1f°", d.SunAngle)
}
