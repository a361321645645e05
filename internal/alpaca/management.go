package alpaca

import (
	"net/http"

	"github.com/ashdown-obs/roofsentry/internal/device"
)

// serverDescription is the management description payload, with the
// field names Alpaca clients expect.
type serverDescription struct {
	ServerName          string `json:"ServerName"`
	Manufacturer        string `json:"Manufacturer"`
	ManufacturerVersion string `json:"ManufacturerVersion"`
	Location            string `json:"Location"`
}

// configuredDevice is one entry in the configureddevices payload.
type configuredDevice struct {
	DeviceName   string `json:"DeviceName"`
	DeviceType   string `json:"DeviceType"`
	DeviceNumber int    `json:"DeviceNumber"`
	UniqueID     string `json:"UniqueID"`
}

// handleAPIVersions reports the supported Alpaca API versions.
func (s *Server) handleAPIVersions(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, []int{1})
}

// handleDescription reports the server descriptor.
func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, serverDescription{
		ServerName:          s.site.Name,
		Manufacturer:        s.info.Manufacturer,
		ManufacturerVersion: s.version,
		Location:            s.site.ID,
	})
}

// handleConfiguredDevices reports the one device this server exposes.
func (s *Server) handleConfiguredDevices(w http.ResponseWriter, r *http.Request) {
	p := parseRequest(r)
	s.writeValue(w, p, []configuredDevice{{
		DeviceName:   s.info.Name,
		DeviceType:   device.Type,
		DeviceNumber: s.info.Number,
		UniqueID:     s.info.UniqueID,
	}})
}
