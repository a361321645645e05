package alpaca

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Management API
	r.Get("/management/apiversions", s.handleAPIVersions)
	r.Get("/management/v1/description", s.handleDescription)
	r.Get("/management/v1/configureddevices", s.handleConfiguredDevices)

	// Device API
	r.Route("/api/v1/safetymonitor/{number}", func(r chi.Router) {
		r.Use(s.deviceNumberMiddleware)

		r.Get("/connected", s.handleGetConnected)
		r.Put("/connected", s.handlePutConnected)
		r.Get("/name", s.handleName)
		r.Get("/description", s.handleDeviceDescription)
		r.Get("/driverinfo", s.handleDriverInfo)
		r.Get("/driverversion", s.handleDriverVersion)
		r.Get("/interfaceversion", s.handleInterfaceVersion)
		r.Get("/supportedactions", s.handleSupportedActions)
		r.Put("/action", s.handleAction)
		r.Put("/commandblind", s.handleCommandBlind)
		r.Put("/commandbool", s.handleCommandBool)
		r.Put("/commandstring", s.handleCommandString)

		r.Get("/issafe", s.handleIsSafe)
		r.Get("/status", s.handleStatus)
		r.Get("/lastupdate", s.handleLastUpdate)
	})

	// Operator-facing routes outside the protocol contract.
	r.Get("/setup", s.handleSetup)
	r.Get("/", http.RedirectHandler("/setup", http.StatusFound).ServeHTTP)
	r.Get("/api/events", s.handleEvents)

	// Conforming devices never answer a namespaced call with a bare
	// 404 or 405: every unrecognised path and method still gets a
	// well-formed envelope.
	r.NotFound(s.handleUnknown)
	r.MethodNotAllowed(s.handleUnknown)

	return r
}

// deviceNumberMiddleware rejects calls addressed to a device number
// this server does not expose. The rejection is an envelope, not a
// routing failure.
func (s *Server) deviceNumberMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "number")
		number, err := strconv.Atoi(raw)
		if err != nil || number != s.info.Number {
			p := parseRequest(r)
			s.writeDeviceError(w, p, nil, "unknown device number: "+raw)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleUnknown answers any unrecognised endpoint or method with an
// envelope carrying ErrorNumber 1.
func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("unknown endpoint",
		"method", r.Method,
		"path", r.URL.Path,
	)
	p := parseRequest(r)
	s.writeDeviceError(w, p, nil, "unknown endpoint: "+r.URL.Path)
}
