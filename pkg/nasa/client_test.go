package nasa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/astroview/internal/upstream"
)

func TestAPOD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/planetary/apod", r.URL.Path)
		require.Equal(t, "k", r.URL.Query().Get("api_key"))
		require.Equal(t, "2024-01-01", r.URL.Query().Get("date"))
		_, _ = w.Write([]byte(`{"title":"X","media_type":"image","url":"u","date":"2024-01-01"}`))
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	a, err := c.APOD(context.Background(), "2024-01-01")
	require.NoError(t, err)
	require.Equal(t, "X", a.Title)
	require.Equal(t, "image", a.MediaType)
}

func TestAPODOmitsEmptyDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.False(t, r.URL.Query().Has("date"))
		require.Equal(t, DemoKey, r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"title":"today"}`))
	}))
	defer srv.Close()

	c := New("", WithBaseURL(srv.URL))
	require.True(t, c.UsingDemoKey())
	a, err := c.APOD(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "today", a.Title)
}

func TestNEOFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/neo/rest/v1/feed", r.URL.Path)
		require.Equal(t, "2024-01-01", r.URL.Query().Get("start_date"))
		require.Equal(t, "2024-01-02", r.URL.Query().Get("end_date"))
		_, _ = w.Write([]byte(`{
			"element_count": 1,
			"near_earth_objects": {
				"2024-01-01": [{
					"id": "3542519",
					"name": "(2010 PK9)",
					"absolute_magnitude_h": 21.2,
					"estimated_diameter": {"kilometers": {"estimated_diameter_min": 0.1, "estimated_diameter_max": 0.3}},
					"is_potentially_hazardous_asteroid": true,
					"close_approach_data": [{
						"close_approach_date": "2024-01-01",
						"relative_velocity": {"kilometers_per_second": "12.5"},
						"miss_distance": {"kilometers": "4000000.1"}
					}]
				}]
			}
		}`))
	}))
	defer srv.Close()

	f, err := New("k", WithBaseURL(srv.URL)).NEOFeed(context.Background(), "2024-01-01", "2024-01-02")
	require.NoError(t, err)
	require.Equal(t, 1, f.ElementCount)
	neo := f.NearEarthObjects["2024-01-01"][0]
	require.True(t, neo.IsPotentiallyHazardousAsteroid)
	require.Equal(t, "12.5", neo.CloseApproachData[0].RelativeVelocity.KilometersPerSecond)
	require.InDelta(t, 0.3, neo.EstimatedDiameter.Kilometers.Max, 1e-9)
}

func TestDONKI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2024-01-01", r.URL.Query().Get("startDate"))
		require.Equal(t, "2024-01-08", r.URL.Query().Get("endDate"))
		switch r.URL.Path {
		case "/DONKI/FLR":
			_, _ = w.Write([]byte(`[{"flrID":"F1","classType":"X1.0","linkedEvents":[{"activityID":"C1"}]}]`))
		case "/DONKI/GST":
			_, _ = w.Write([]byte(`[{"gstID":"G1","allKpIndex":[{"kpIndex":7.33}]}]`))
		case "/DONKI/CME":
			_, _ = w.Write([]byte(`[{"activityID":"C1","note":"fast"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL))
	ctx := context.Background()

	flares, err := c.SolarFlares(ctx, "2024-01-01", "2024-01-08")
	require.NoError(t, err)
	require.Equal(t, "X1.0", flares[0].ClassType)
	require.Equal(t, "C1", flares[0].LinkedEvents[0].ActivityID)

	storms, err := c.GeomagneticStorms(ctx, "2024-01-01", "2024-01-08")
	require.NoError(t, err)
	require.InDelta(t, 7.33, storms[0].AllKpIndex[0].KpIndex, 1e-9)

	cmes, err := c.CoronalMassEjections(ctx, "2024-01-01", "2024-01-08")
	require.NoError(t, err)
	require.Equal(t, "fast", cmes[0].Note)
}

func TestEONETEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/events", r.URL.Path)
		require.Equal(t, "wildfires", r.URL.Query().Get("category"))
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		require.False(t, r.URL.Query().Has("api_key"), "EONET must not receive the NASA key")
		_, _ = w.Write([]byte(`{"events":[{"id":"EONET_1","title":"Fire","categories":[{"id":"wildfires","title":"Wildfires"}],
			"geometry":[{"date":"2024-01-01T00:00:00Z","type":"Point","coordinates":[-120.1,38.2]}]}]}`))
	}))
	defer srv.Close()

	c := New("k", WithEONETBaseURL(srv.URL+"/api/v3"))
	out, err := c.EONETEvents(context.Background(), "wildfires", 5)
	require.NoError(t, err)
	require.Len(t, out.Events, 1)
	require.Equal(t, "Point", out.Events[0].Geometry[0].Type)
	require.JSONEq(t, `[-120.1,38.2]`, string(out.Events[0].Geometry[0].Coordinates))
}

func TestUpstreamErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"API_KEY_INVALID","message":"An invalid api_key was supplied"}}`))
	}))
	defer srv.Close()

	_, err := New("bad", WithBaseURL(srv.URL)).APOD(context.Background(), "")
	var se *upstream.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusForbidden, se.StatusCode)
	require.Equal(t, "NASA API", se.API)
	require.NotContains(t, err.Error(), "bad")
}
