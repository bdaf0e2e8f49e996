package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/briangreenhill/astroview/internal/http/httperr"
	"github.com/briangreenhill/astroview/pkg/n2yo"
)

// minVisibility is the shortest visible pass reported, in seconds
const minVisibility = 300

const n2yoDemoMessage = "Set N2YO_API_KEY for real data."

var errNoPositions = errors.New("no positions in response")

func (s *Server) satelliteRoutes() []route {
	return []route{
		{"iss", http.MethodGet, "/iss", 10 * time.Second, s.handleISS},
		{"passes", http.MethodGet, "/passes", 12 * time.Hour, s.handlePasses},
		{"overhead", http.MethodGet, "/overhead", 5 * time.Minute, s.handleOverhead},
	}
}

type issPosition struct {
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Altitude  float64  `json:"altitude"` // km
	Velocity  *float64 `json:"velocity,omitempty"`
	Timestamp string   `json:"timestamp"`
	Demo      bool     `json:"_demo,omitempty"`
	Message   string   `json:"message,omitempty"`
}

func (s *Server) handleISS(w http.ResponseWriter, r *http.Request) error {
	if s.Clients.N2YO == nil {
		v := 7.66
		writeJSON(w, issPosition{
			Altitude:  408,
			Velocity:  &v,
			Timestamp: s.now().UTC().Format(time.RFC3339),
			Demo:      true,
			Message:   "Using demo data. " + n2yoDemoMessage,
		})
		return nil
	}

	resp, err := s.Clients.N2YO.Positions(r.Context(), n2yo.ISS, 0, 0, 0, 1)
	if err != nil {
		return httperr.External("N2YO API", err)
	}
	if len(resp.Positions) == 0 {
		return httperr.External("N2YO API", errNoPositions)
	}
	p := resp.Positions[0]
	writeJSON(w, issPosition{
		Lat:       p.SatLatitude,
		Lon:       p.SatLongitude,
		Altitude:  p.SatAltitude,
		Timestamp: time.Unix(p.Timestamp, 0).UTC().Format(time.RFC3339),
	})
	return nil
}

type pass struct {
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	Duration     int     `json:"duration"`
	MaxElevation float64 `json:"maxElevation"`
	StartAz      float64 `json:"startAz"`
	EndAz        float64 `json:"endAz"`
	Mag          float64 `json:"mag"`
}

type passesResponse struct {
	Passes  []pass `json:"passes"`
	Demo    bool   `json:"_demo,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) error {
	if s.Clients.N2YO == nil {
		writeJSON(w, passesResponse{Passes: []pass{}, Demo: true, Message: n2yoDemoMessage})
		return nil
	}

	noradID, err := queryInt(r, "noradId", n2yo.ISS, 1, 1<<31-1)
	if err != nil {
		return err
	}
	lat, lon, err := coordinates(r)
	if err != nil {
		return err
	}
	days, err := queryInt(r, "days", 10, 1, 10)
	if err != nil {
		return err
	}

	resp, err := s.Clients.N2YO.VisualPasses(r.Context(), noradID, lat, lon, 0, days, minVisibility)
	if err != nil {
		return httperr.External("N2YO API", err)
	}
	out := passesResponse{Passes: make([]pass, 0, len(resp.Passes))}
	for _, p := range resp.Passes {
		out.Passes = append(out.Passes, pass{
			StartTime:    time.Unix(p.StartUTC, 0).UTC().Format(time.RFC3339),
			EndTime:      time.Unix(p.EndUTC, 0).UTC().Format(time.RFC3339),
			Duration:     p.Duration,
			MaxElevation: p.MaxEl,
			StartAz:      p.StartAz,
			EndAz:        p.EndAz,
			Mag:          p.Mag,
		})
	}
	writeJSON(w, out)
	return nil
}

type overheadSatellite struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Altitude float64 `json:"altitude"`
}

type overheadResponse struct {
	Satellites []overheadSatellite `json:"satellites"`
	Demo       bool                `json:"_demo,omitempty"`
	Message    string              `json:"message,omitempty"`
}

func (s *Server) handleOverhead(w http.ResponseWriter, r *http.Request) error {
	if s.Clients.N2YO == nil {
		writeJSON(w, overheadResponse{Satellites: []overheadSatellite{}, Demo: true, Message: n2yoDemoMessage})
		return nil
	}

	lat, lon, err := coordinates(r)
	if err != nil {
		return err
	}
	radius, err := queryInt(r, "radius", 90, 0, 90)
	if err != nil {
		return err
	}

	resp, err := s.Clients.N2YO.Above(r.Context(), lat, lon, 0, radius, 0)
	if err != nil {
		return httperr.External("N2YO API", err)
	}
	out := overheadResponse{Satellites: make([]overheadSatellite, 0, len(resp.Above))}
	for _, sat := range resp.Above {
		out.Satellites = append(out.Satellites, overheadSatellite{
			ID:       sat.SatID,
			Name:     sat.SatName,
			Lat:      sat.SatLat,
			Lon:      sat.SatLng,
			Altitude: sat.SatAlt,
		})
	}
	writeJSON(w, out)
	return nil
}
