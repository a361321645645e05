package alpaca

import (
	"net/http"

	"github.com/ashdown-obs/roofsentry/internal/device"
)

// handleGetConnected reports the client-controlled connection flag.
func (s *Server) handleGetConnected(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, s.state.Connected())
}

// handlePutConnected sets the connection flag from the Connected
// parameter. This is the only endpoint allowed to mutate it; the
// poller observes the change on its next cycle.
func (s *Server) handlePutConnected(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)

	connected, present, err := p.boolParam("Connected")
	if err != nil {
		s.writeDeviceError(w, p, nil, err.Error())
		return
	}
	if !present {
		s.writeDeviceError(w, p, nil, "missing Connected parameter")
		return
	}

	s.state.SetConnected(connected)
	if connected {
		s.logger.Info("alpaca client connected")
	} else {
		s.logger.Info("alpaca client disconnected")
	}
	s.writeValue(w, p, nil)
}

// handleName reports the device name.
func (s *Server) handleName(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, s.info.Name)
}

// handleDeviceDescription reports the device description.
func (s *Server) handleDeviceDescription(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, s.info.Description)
}

// handleDriverInfo reports the driver summary string.
func (s *Server) handleDriverInfo(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, s.info.DriverInfo())
}

// handleDriverVersion reports the driver version.
func (s *Server) handleDriverVersion(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, s.info.DriverVersion)
}

// handleInterfaceVersion reports the ISafetyMonitor interface version.
func (s *Server) handleInterfaceVersion(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, device.InterfaceVersion)
}

// handleSupportedActions reports the (empty) custom action list.
func (s *Server) handleSupportedActions(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, []string{})
}

// A safety monitor exposes no custom actions or raw commands. Each stub
// still reads its identifying parameter so the rejection names what the
// client asked for, and each returns the Value type its endpoint
// defines.

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	name := p.stringParam("Action")
	s.logger.Info("action requested", "action", name, "parameters", p.stringParam("Parameters"))
	s.writeDeviceError(w, p, "", "action '"+name+"' is not supported")
}

func (s *Server) handleCommandBlind(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	command := p.stringParam("Command")
	s.writeDeviceError(w, p, nil, "command '"+command+"' is not supported")
}

func (s *Server) handleCommandBool(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	command := p.stringParam("Command")
	s.writeDeviceError(w, p, false, "command '"+command+"' is not supported")
}

func (s *Server) handleCommandString(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	command := p.stringParam("Command")
	s.writeDeviceError(w, p, "", "command '"+command+"' is not supported")
}
