package routes

import (
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/briangreenhill/astroview/internal/http/httperr"
	"github.com/briangreenhill/astroview/pkg/openweather"
)

func (s *Server) weatherRoutes() []route {
	return []route{
		{"sky", http.MethodGet, "/sky", 30 * time.Minute, s.handleSky},
	}
}

type skyConditions struct {
	CloudCover  int     `json:"cloudCover"` // percent
	Visibility  int     `json:"visibility"` // meters
	Temperature float64 `json:"temperature"`
	Conditions  string  `json:"conditions"`
	Description string  `json:"description,omitempty"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Demo        bool    `json:"_demo,omitempty"`
	Message     string  `json:"message,omitempty"`
}

type dailyForecast struct {
	Date        string  `json:"date"`
	CloudCover  int     `json:"cloudCover"`
	Conditions  string  `json:"conditions"`
	Temperature float64 `json:"temperature"`
	Visibility  int     `json:"visibility"`
}

// handleSky answers current conditions, or a per-day forecast when days is set
func (s *Server) handleSky(w http.ResponseWriter, r *http.Request) error {
	if s.Clients.OpenWeather == nil {
		writeJSON(w, skyConditions{
			CloudCover:  rand.IntN(100),
			Visibility:  10000,
			Temperature: 15 + rand.Float64()*10,
			Conditions:  "Clear",
			Humidity:    50 + rand.Float64()*30,
			WindSpeed:   rand.Float64() * 10,
			Demo:        true,
			Message:     "Using demo data. Set OPENWEATHER_API_KEY for real data.",
		})
		return nil
	}

	lat, lon, err := coordinates(r)
	if err != nil {
		return err
	}

	if r.URL.Query().Get("days") != "" {
		days, err := queryInt(r, "days", 1, 1, 5)
		if err != nil {
			return err
		}
		f, err := s.Clients.OpenWeather.Forecast(r.Context(), lat, lon, days)
		if err != nil {
			return httperr.External("OpenWeather API", err)
		}
		writeJSON(w, groupForecast(f.List))
		return nil
	}

	c, err := s.Clients.OpenWeather.Current(r.Context(), lat, lon)
	if err != nil {
		return httperr.External("OpenWeather API", err)
	}
	out := skyConditions{
		CloudCover:  c.Clouds.All,
		Visibility:  c.Visibility,
		Temperature: c.Main.Temp,
		Humidity:    c.Main.Humidity,
		WindSpeed:   c.Wind.Speed,
	}
	if len(c.Weather) > 0 {
		out.Conditions = c.Weather[0].Main
		out.Description = c.Weather[0].Description
	}
	writeJSON(w, out)
	return nil
}

// groupForecast summarizes 3-hour slots per UTC day. Cloud cover is the
// day's average; the other values come from the day's first slot.
func groupForecast(slots []openweather.ForecastSlot) []dailyForecast {
	out := []dailyForecast{}
	var clouds, n int
	flush := func() {
		if n > 0 {
			out[len(out)-1].CloudCover = int(math.Round(float64(clouds) / float64(n)))
		}
	}
	for _, slot := range slots {
		date := slot.Date()
		if len(out) == 0 || out[len(out)-1].Date != date {
			flush()
			d := dailyForecast{
				Date:        date,
				Temperature: slot.Main.Temp,
				Visibility:  slot.Visibility,
			}
			if len(slot.Weather) > 0 {
				d.Conditions = slot.Weather[0].Main
			}
			out = append(out, d)
			clouds, n = 0, 0
		}
		clouds += slot.Clouds.All
		n++
	}
	flush()
	return out
}
