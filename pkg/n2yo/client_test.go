package n2yo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New("key", WithBaseURL(srv.URL+"/rest/v1/satellite"), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
	_, err = New("  \t")
	require.Error(t, err)
}

func TestPositions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/satellite/positions/25544/0/0/0/1", r.URL.Path)
		require.Equal(t, "key", r.URL.Query().Get("apiKey"))
		_, _ = w.Write([]byte(`{"info":{"satid":25544,"satname":"SPACE STATION"},
			"positions":[{"satlatitude":51.2,"satlongitude":-12.5,"sataltitude":417.3,"timestamp":1700000000}]}`))
	})

	out, err := c.Positions(context.Background(), ISS, 0, 0, 0, 1)
	require.NoError(t, err)
	require.Equal(t, "SPACE STATION", out.Info.SatName)
	require.InDelta(t, 417.3, out.Positions[0].SatAltitude, 1e-9)
	require.EqualValues(t, 1700000000, out.Positions[0].Timestamp)
}

func TestVisualPasses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/satellite/visualpasses/25544/40.7128/-74.006/0/10/300", r.URL.Path)
		_, _ = w.Write([]byte(`{"passes":[{"startUTC":1700000000,"endUTC":1700000300,"maxEl":45.5,"duration":300,"mag":-2.1}]}`))
	})

	out, err := c.VisualPasses(context.Background(), ISS, 40.7128, -74.006, 0, 10, 300)
	require.NoError(t, err)
	require.Len(t, out.Passes, 1)
	require.Equal(t, 300, out.Passes[0].Duration)
}

func TestAbove(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/satellite/above/10/20/0/90/0", r.URL.Path)
		_, _ = w.Write([]byte(`{"above":[{"satid":1,"satname":"A","satlat":1,"satlng":2,"satalt":500}]}`))
	})

	out, err := c.Above(context.Background(), 10, 20, 0, 90, 0)
	require.NoError(t, err)
	require.Equal(t, "A", out.Above[0].SatName)
}

func TestErrorFieldWithOKStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Invalid API Key!"}`))
	})

	_, err := c.Above(context.Background(), 0, 0, 0, 90, 0)
	require.ErrorContains(t, err, "Invalid API Key!")
}
