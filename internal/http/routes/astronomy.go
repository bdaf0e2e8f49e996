package routes

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/briangreenhill/astroview/internal/http/httperr"
)

var moonPhases = [...]string{
	"New Moon", "Waxing Crescent", "First Quarter", "Waxing Gibbous",
	"Full Moon", "Waning Gibbous", "Last Quarter", "Waning Crescent",
}

var demoPlanets = [...]string{"Mercury", "Venus", "Mars", "Jupiter", "Saturn"}

func (s *Server) astronomyRoutes() []route {
	return []route{
		{"moonPhase", http.MethodGet, "/moon-phase", time.Hour, s.handleMoonPhase},
		{"planets", http.MethodGet, "/planets", time.Hour, s.handlePlanets},
	}
}

// moonPhase passes AstronomyAPI values through untouched; they are numbers
// or numeric strings depending on the field.
type moonPhase struct {
	Date         string `json:"date"`
	Phase        any    `json:"phase"`
	PhaseName    string `json:"phaseName"`
	Illumination any    `json:"illumination"`
	Age          any    `json:"age"`
	Demo         bool   `json:"_demo,omitempty"`
	Message      string `json:"message,omitempty"`
}

func (s *Server) handleMoonPhase(w http.ResponseWriter, r *http.Request) error {
	date, err := queryDate(r, "date", s.today())
	if err != nil {
		return err
	}

	if s.Clients.Astronomy == nil {
		i := rand.IntN(len(moonPhases))
		writeJSON(w, moonPhase{
			Date:         date,
			Phase:        float64(i) / float64(len(moonPhases)),
			PhaseName:    moonPhases[i],
			Illumination: rand.Float64() * 100,
			Age:          rand.Float64() * 29.5,
			Demo:         true,
			Message:      "Using demo data. Set ASTRONOMY_API_ID and ASTRONOMY_API_SECRET for real data.",
		})
		return nil
	}

	mp, err := s.Clients.Astronomy.Moon(r.Context(), date)
	if err != nil {
		return httperr.External("Astronomy API", err)
	}
	writeJSON(w, moonPhase{
		Date:         date,
		Phase:        raw(mp.Phase.Fraction),
		PhaseName:    mp.Phase.String,
		Illumination: raw(mp.Illumination),
		Age:          raw(mp.Age),
	})
	return nil
}

// raw keeps an absent value as null instead of an invalid empty RawMessage
func raw(m json.RawMessage) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

type planet struct {
	Name          string  `json:"name"`
	Visible       bool    `json:"visible"`
	Altitude      float64 `json:"altitude"`
	Azimuth       float64 `json:"azimuth"`
	Magnitude     float64 `json:"magnitude"`
	Constellation string  `json:"constellation"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type planetsResponse struct {
	Date     string   `json:"date"`
	Location location `json:"location"`
	Planets  []planet `json:"planets"`
	Demo     bool     `json:"_demo"`
	Message  string   `json:"message"`
}

// handlePlanets always serves generated positions; no configured upstream
// computes them.
func (s *Server) handlePlanets(w http.ResponseWriter, r *http.Request) error {
	lat, err := queryFloat(r, "lat", 0)
	if err != nil {
		return err
	}
	lon, err := queryFloat(r, "lon", 0)
	if err != nil {
		return err
	}
	date, err := queryDate(r, "date", s.today())
	if err != nil {
		return err
	}

	planets := make([]planet, 0, len(demoPlanets))
	for _, name := range demoPlanets {
		planets = append(planets, planet{
			Name:          name,
			Visible:       rand.Float64() > 0.3,
			Altitude:      rand.Float64() * 90,
			Azimuth:       rand.Float64() * 360,
			Magnitude:     -2 + rand.Float64()*5,
			Constellation: "Demo Constellation",
		})
	}
	writeJSON(w, planetsResponse{
		Date:     date,
		Location: location{Lat: lat, Lon: lon},
		Planets:  planets,
		Demo:     true,
		Message:  "Using demo data. Real planet calculations require an ephemeris library.",
	})
	return nil
}
