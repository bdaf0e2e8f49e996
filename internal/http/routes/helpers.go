package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/astroview/internal/http/httperr"
)

const dateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, v any) {
	httperr.JSON(w, http.StatusOK, v)
}

func (s *Server) today() string {
	return s.now().UTC().Format(dateLayout)
}

// queryFloat parses an optional float parameter
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, httperr.Validation(fmt.Sprintf("%s must be a number", name), map[string]string{name: raw})
	}
	return f, nil
}

// queryInt parses an optional integer parameter and clamps it to [lo, hi]
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, httperr.Validation(fmt.Sprintf("%s must be an integer", name), map[string]string{name: raw})
	}
	return min(max(n, lo), hi), nil
}

// queryDate validates an optional YYYY-MM-DD parameter
func queryDate(r *http.Request, name, def string) (string, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	if _, err := time.Parse(dateLayout, raw); err != nil {
		return "", httperr.Validation(fmt.Sprintf("%s must be formatted YYYY-MM-DD", name), map[string]string{name: raw})
	}
	return raw, nil
}

// coordinates reads lat/lon, both required
func coordinates(r *http.Request) (lat, lon float64, err error) {
	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lon") == "" {
		return 0, 0, httperr.Validation("lat and lon are required", nil)
	}
	if lat, err = queryFloat(r, "lat", 0); err != nil {
		return 0, 0, err
	}
	if lon, err = queryFloat(r, "lon", 0); err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, httperr.Validation("lat must be within ±90 and lon within ±180", nil)
	}
	return lat, lon, nil
}

// decodeBody reads a JSON request body into v
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return httperr.Validation("Request body must be JSON", nil)
	}
	return nil
}

// message is the {success, message} body the notification routes answer with
type message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, m message) {
	if !m.Success {
		hlog.FromRequest(r).Warn().Int("status", status).Str("message", m.Message).Msg("request rejected")
	}
	httperr.JSON(w, status, m)
}
