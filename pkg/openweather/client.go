package openweather

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/briangreenhill/astroview/internal/upstream"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// SlotsPerDay is the number of 3-hour forecast slots in a day
	SlotsPerDay = 8

	apiName = "OpenWeather API"
)

type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("apiKey required")
	}
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
		apiKey:  apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) doJSON(ctx context.Context, p string, q url.Values, out any) error {
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)
	u.RawQuery = q.Encode()
	return upstream.GetJSON(ctx, c.http, apiName, u.String(), out)
}

func coords(lat, lon float64) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

// Current returns the current conditions at (lat, lon) in metric units
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Current, error) {
	var out Current
	if err := c.doJSON(ctx, "/weather", coords(lat, lon), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Forecast returns the 3-hourly forecast for the next days days
func (c *Client) Forecast(ctx context.Context, lat, lon float64, days int) (*Forecast, error) {
	q := coords(lat, lon)
	if days > 0 {
		q.Set("cnt", strconv.Itoa(days*SlotsPerDay))
	}
	var out Forecast
	if err := c.doJSON(ctx, "/forecast", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
