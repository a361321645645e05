package alpaca

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// requestParams holds the decoded parameter sources for one request.
//
// Alpaca clients are inconsistent about where they put parameters:
// NINA sends form fields, some clients send a JSON body, and manual
// testing uses query strings. Lookup precedence is JSON body, then
// form fields, then query parameters.
type requestParams struct {
	body  map[string]any
	form  url.Values
	query url.Values
}

// parseRequest decodes all parameter sources once, so handlers can read
// several parameters without re-parsing the body.
func parseRequest(r *http.Request) *requestParams {
	p := &requestParams{query: r.URL.Query()}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		//nolint:errcheck // A malformed body simply yields no body parameters
		json.NewDecoder(r.Body).Decode(&p.body)
		return p
	}

	//nolint:errcheck // An unparsable form simply yields no form parameters
	r.ParseForm()
	p.form = r.PostForm
	return p
}

// lookup returns the raw parameter value from the highest-precedence
// source that carries it.
func (p *requestParams) lookup(name string) (any, bool) {
	if v, ok := p.body[name]; ok {
		return v, true
	}
	if v := p.form.Get(name); v != "" {
		return v, true
	}
	if v := p.query.Get(name); v != "" {
		return v, true
	}
	return nil, false
}

// clientTransactionID returns the caller-supplied transaction ID, or
// nil if absent or unparsable. An unparsable ID is silently dropped so
// the response stays a valid envelope.
func (p *requestParams) clientTransactionID() *uint32 {
	raw, ok := p.lookup("ClientTransactionID")
	if !ok {
		return nil
	}

	var id uint64
	switch v := raw.(type) {
	case float64:
		if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
			return nil
		}
		id = uint64(v)
	case string:
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil
		}
		id = parsed
	default:
		return nil
	}

	out := uint32(id)
	return &out
}

// stringParam returns the named parameter as a string, or "" if absent.
func (p *requestParams) stringParam(name string) string {
	raw, ok := p.lookup(name)
	if !ok {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}

// boolParam returns the named parameter as a bool.
//
// Returns:
//   - bool: The parsed value
//   - bool: Whether the parameter was present
//   - error: If present but not a recognisable boolean
func (p *requestParams) boolParam(name string) (bool, bool, error) {
	raw, ok := p.lookup(name)
	if !ok {
		return false, false, nil
	}

	switch v := raw.(type) {
	case bool:
		return v, true, nil
	case string:
		parsed, err := parseBool(v)
		if err != nil {
			return false, true, err
		}
		return parsed, true, nil
	default:
		return false, true, fmt.Errorf("parameter %s: unrecognised boolean %v", name, raw)
	}
}

// parseBool accepts the boolean spellings seen from real Alpaca
// clients. Anything else is an error rather than a silent false.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognised boolean value %q", s)
	}
}
