package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/2.5/weather", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "40.7128", q.Get("lat"))
		require.Equal(t, "-74.006", q.Get("lon"))
		require.Equal(t, "metric", q.Get("units"))
		require.Equal(t, "k", q.Get("appid"))
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clear","description":"clear sky"}],
			"main":{"temp":12.5,"humidity":60},"visibility":10000,"wind":{"speed":3.1},"clouds":{"all":5}}`))
	}))
	defer srv.Close()

	c, err := New("k", WithBaseURL(srv.URL+"/data/2.5"))
	require.NoError(t, err)
	cur, err := c.Current(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)
	require.Equal(t, "Clear", cur.Weather[0].Main)
	require.Equal(t, 5, cur.Clouds.All)
	require.Equal(t, 10000, cur.Visibility)
}

func TestForecastRequestsEightSlotsPerDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forecast", r.URL.Path)
		require.Equal(t, "24", r.URL.Query().Get("cnt"))
		_, _ = w.Write([]byte(`{"cnt":2,"list":[
			{"dt_txt":"2024-01-01 21:00:00","clouds":{"all":10}},
			{"dt_txt":"2024-01-02 00:00:00","clouds":{"all":90}}]}`))
	}))
	defer srv.Close()

	c, err := New("k", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	f, err := c.Forecast(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	require.Len(t, f.List, 2)
	require.Equal(t, "2024-01-01", f.List[0].Date())
	require.Equal(t, "2024-01-02", f.List[1].Date())
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
