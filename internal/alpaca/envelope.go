package alpaca

import (
	"encoding/json"
	"net/http"
)

// envelope is the standard Alpaca response wrapper.
//
// ClientTransactionID is echoed only when the caller supplied one;
// ServerTransactionID is assigned from the device-wide counter, once
// per response, and never repeats within a process lifetime.
type envelope struct {
	Value               any     `json:"Value"`
	ErrorNumber         int     `json:"ErrorNumber"`
	ErrorMessage        string  `json:"ErrorMessage"`
	ClientTransactionID *uint32 `json:"ClientTransactionID,omitempty"`
	ServerTransactionID uint32  `json:"ServerTransactionID"`
}

// errDevice is the ErrorNumber reported for every application-level
// failure: unsupported commands, unknown endpoints, bad parameters.
const errDevice = 1

// writeEnvelope sends a complete Alpaca response.
//
// The HTTP status is always 200: the protocol carries failure in
// ErrorNumber, never at the transport level.
func (s *Server) writeEnvelope(w http.ResponseWriter, p *requestParams, value any, errorNumber int, errorMessage string) {
	resp := envelope{
		Value:               value,
		ErrorNumber:         errorNumber,
		ErrorMessage:        errorMessage,
		ServerTransactionID: s.state.NextTransactionID(),
	}
	if p != nil {
		resp.ClientTransactionID = p.clientTransactionID()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	json.NewEncoder(w).Encode(resp)
}

// writeValue sends a successful envelope carrying value.
func (s *Server) writeValue(w http.ResponseWriter, p *requestParams, value any) {
	s.writeEnvelope(w, p, value, 0, "")
}

// writeDeviceError sends an envelope reporting an application-level
// failure. The value accompanies the error because some common device
// endpoints define a typed Value even on failure (commandbool returns
// false, action returns "").
func (s *Server) writeDeviceError(w http.ResponseWriter, p *requestParams, value any, message string) {
	s.writeEnvelope(w, p, value, errDevice, message)
}
