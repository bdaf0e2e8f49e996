package routes

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/briangreenhill/astroview/internal/http/httperr"
	"github.com/briangreenhill/astroview/pkg/nasa"
)

const donkiWindow = 7 * 24 * time.Hour

func (s *Server) nasaRoutes() []route {
	return []route{
		{"apod", http.MethodGet, "/apod", 24 * time.Hour, s.handleAPOD},
		{"neo", http.MethodGet, "/neo", 6 * time.Hour, s.handleNEO},
		{"solarFlares", http.MethodGet, "/solar-flares", 2 * time.Hour, s.handleSolarFlares},
		{"geomagneticStorms", http.MethodGet, "/geomagnetic-storms", 2 * time.Hour, s.handleGeomagneticStorms},
		{"cme", http.MethodGet, "/cme", 2 * time.Hour, s.handleCME},
		{"eonet", http.MethodGet, "/eonet", time.Hour, s.handleEONET},
	}
}

type apodResponse struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url"`
	HDURL       string `json:"hdurl,omitempty"`
	MediaType   string `json:"mediaType"`
	Date        string `json:"date"`
	Copyright   string `json:"copyright,omitempty"`
}

func (s *Server) handleAPOD(w http.ResponseWriter, r *http.Request) error {
	date, err := queryDate(r, "date", "")
	if err != nil {
		return err
	}
	a, err := s.Clients.NASA.APOD(r.Context(), date)
	if err != nil {
		return httperr.External("NASA API", err)
	}
	writeJSON(w, apodResponse{
		Title:       a.Title,
		Explanation: a.Explanation,
		URL:         a.URL,
		HDURL:       a.HDURL,
		MediaType:   a.MediaType,
		Date:        a.Date,
		Copyright:   a.Copyright,
	})
	return nil
}

type closeApproach struct {
	Date         string  `json:"date"`
	Velocity     float64 `json:"velocity"`     // km/s
	MissDistance float64 `json:"missDistance"` // km
}

type asteroid struct {
	ID                     string             `json:"id"`
	Name                   string             `json:"name"`
	Date                   string             `json:"date"`
	EstimatedDiameter      nasa.DiameterRange `json:"estimatedDiameter"`
	IsPotentiallyHazardous bool               `json:"isPotentiallyHazardous"`
	CloseApproachData      *closeApproach     `json:"closeApproachData"`
	AbsoluteMagnitude      float64            `json:"absoluteMagnitude"`
}

type neoResponse struct {
	ElementCount int        `json:"elementCount"`
	Asteroids    []asteroid `json:"asteroids"`
}

func (s *Server) handleNEO(w http.ResponseWriter, r *http.Request) error {
	start, err := queryDate(r, "start_date", s.today())
	if err != nil {
		return err
	}
	end, err := queryDate(r, "end_date", start)
	if err != nil {
		return err
	}
	feed, err := s.Clients.NASA.NEOFeed(r.Context(), start, end)
	if err != nil {
		return httperr.External("NASA API", err)
	}
	writeJSON(w, flattenNEOFeed(feed))
	return nil
}

// flattenNEOFeed turns the date-keyed feed into one list ordered by date
func flattenNEOFeed(feed *nasa.NEOFeed) neoResponse {
	dates := make([]string, 0, len(feed.NearEarthObjects))
	for d := range feed.NearEarthObjects {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	out := neoResponse{ElementCount: feed.ElementCount, Asteroids: []asteroid{}}
	for _, d := range dates {
		for _, neo := range feed.NearEarthObjects[d] {
			a := asteroid{
				ID:                     neo.ID,
				Name:                   neo.Name,
				Date:                   d,
				EstimatedDiameter:      neo.EstimatedDiameter.Kilometers,
				IsPotentiallyHazardous: neo.IsPotentiallyHazardousAsteroid,
				AbsoluteMagnitude:      neo.AbsoluteMagnitudeH,
			}
			if len(neo.CloseApproachData) > 0 {
				ca := neo.CloseApproachData[0]
				a.CloseApproachData = &closeApproach{
					Date:         ca.CloseApproachDate,
					Velocity:     parseDecimal(ca.RelativeVelocity.KilometersPerSecond),
					MissDistance: parseDecimal(ca.MissDistance.Kilometers),
				}
			}
			out.Asteroids = append(out.Asteroids, a)
		}
	}
	return out
}

func parseDecimal(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// donkiRange reads startDate/endDate, defaulting to the last seven days
func (s *Server) donkiRange(r *http.Request) (string, string, error) {
	end, err := queryDate(r, "endDate", s.today())
	if err != nil {
		return "", "", err
	}
	start, err := queryDate(r, "startDate", s.now().UTC().Add(-donkiWindow).Format(dateLayout))
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

type solarFlare struct {
	ID              string             `json:"id"`
	BeginTime       string             `json:"beginTime"`
	PeakTime        string             `json:"peakTime"`
	EndTime         *string            `json:"endTime"`
	ClassType       string             `json:"classType"`
	SourceLocation  string             `json:"sourceLocation"`
	ActiveRegionNum *int               `json:"activeRegionNum"`
	LinkedEvents    []nasa.LinkedEvent `json:"linkedEvents"`
}

func (s *Server) handleSolarFlares(w http.ResponseWriter, r *http.Request) error {
	start, end, err := s.donkiRange(r)
	if err != nil {
		return err
	}
	flares, err := s.Clients.NASA.SolarFlares(r.Context(), start, end)
	if err != nil {
		return httperr.External("NASA API", err)
	}
	out := make([]solarFlare, 0, len(flares))
	for _, f := range flares {
		out = append(out, solarFlare{
			ID:              f.FlrID,
			BeginTime:       f.BeginTime,
			PeakTime:        f.PeakTime,
			EndTime:         f.EndTime,
			ClassType:       f.ClassType,
			SourceLocation:  f.SourceLocation,
			ActiveRegionNum: f.ActiveRegionNum,
			LinkedEvents:    f.LinkedEvents,
		})
	}
	writeJSON(w, out)
	return nil
}

type geomagneticStorm struct {
	ID           string             `json:"id"`
	StartTime    string             `json:"startTime"`
	LinkedEvents []nasa.LinkedEvent `json:"linkedEvents"`
	KpIndex      *float64           `json:"kpIndex,omitempty"`
}

func (s *Server) handleGeomagneticStorms(w http.ResponseWriter, r *http.Request) error {
	start, end, err := s.donkiRange(r)
	if err != nil {
		return err
	}
	storms, err := s.Clients.NASA.GeomagneticStorms(r.Context(), start, end)
	if err != nil {
		return httperr.External("NASA API", err)
	}
	out := make([]geomagneticStorm, 0, len(storms))
	for _, g := range storms {
		gs := geomagneticStorm{ID: g.GstID, StartTime: g.StartTime, LinkedEvents: g.LinkedEvents}
		if len(g.AllKpIndex) > 0 {
			kp := g.AllKpIndex[0].KpIndex
			gs.KpIndex = &kp
		}
		out = append(out, gs)
	}
	writeJSON(w, out)
	return nil
}

type coronalMassEjection struct {
	ID             string             `json:"id"`
	StartTime      string             `json:"startTime"`
	SourceLocation string             `json:"sourceLocation"`
	Note           string             `json:"note"`
	LinkedEvents   []nasa.LinkedEvent `json:"linkedEvents"`
}

func (s *Server) handleCME(w http.ResponseWriter, r *http.Request) error {
	start, end, err := s.donkiRange(r)
	if err != nil {
		return err
	}
	cmes, err := s.Clients.NASA.CoronalMassEjections(r.Context(), start, end)
	if err != nil {
		return httperr.External("NASA API", err)
	}
	out := make([]coronalMassEjection, 0, len(cmes))
	for _, c := range cmes {
		out = append(out, coronalMassEjection{
			ID:             c.ActivityID,
			StartTime:      c.StartTime,
			SourceLocation: c.SourceLocation,
			Note:           c.Note,
			LinkedEvents:   c.LinkedEvents,
		})
	}
	writeJSON(w, out)
	return nil
}

type naturalEvent struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description *string              `json:"description"`
	Categories  []nasa.EONETCategory `json:"categories"`
	Geometry    *nasa.EONETGeometry  `json:"geometry,omitempty"`
	Date        string               `json:"date,omitempty"`
	Link        string               `json:"link"`
}

func (s *Server) handleEONET(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryInt(r, "limit", 20, 1, 500)
	if err != nil {
		return err
	}
	resp, err := s.Clients.NASA.EONETEvents(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		return httperr.External("EONET API", err)
	}
	events := make([]naturalEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		ev := naturalEvent{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Categories:  e.Categories,
			Link:        e.Link,
		}
		if len(e.Geometry) > 0 {
			g := e.Geometry[0]
			ev.Geometry = &g
			ev.Date = g.Date
		}
		events = append(events, ev)
	}
	writeJSON(w, map[string]any{"events": events})
	return nil
}
