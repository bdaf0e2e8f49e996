// Package nasa is a small client for api.nasa.gov and the EONET events API.
package nasa

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/briangreenhill/astroview/internal/upstream"
)

const (
	DefaultBaseURL      = "https://api.nasa.gov"
	DefaultEONETBaseURL = "https://eonet.gsfc.nasa.gov/api/v3"

	// DemoKey is NASA's shared, heavily rate limited key
	DemoKey = "DEMO_KEY"

	apiName   = "NASA API"
	eonetName = "EONET API"
)

type Client struct {
	http     *http.Client
	baseURL  *url.URL
	eonetURL *url.URL
	apiKey   string
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

func WithEONETBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.eonetURL = u
		}
	}
}

// New creates a client. An empty key falls back to DemoKey.
func New(apiKey string, opts ...Option) *Client {
	if apiKey == "" {
		apiKey = DemoKey
	}
	base, _ := url.Parse(DefaultBaseURL)
	eonet, _ := url.Parse(DefaultEONETBaseURL)
	c := &Client{
		http:     http.DefaultClient,
		baseURL:  base,
		eonetURL: eonet,
		apiKey:   apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UsingDemoKey reports whether requests go out with the shared demo key
func (c *Client) UsingDemoKey() bool {
	return c.apiKey == DemoKey
}

func buildURL(base *url.URL, p string, q url.Values) string {
	u := *base
	u.Path = path.Join(u.Path, p)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, p string, q url.Values, out any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	return upstream.GetJSON(ctx, c.http, apiName, buildURL(c.baseURL, p, q), out)
}

// APOD returns the picture of the day; an empty date means today
func (c *Client) APOD(ctx context.Context, date string) (*APOD, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var a APOD
	if err := c.doJSON(ctx, "/planetary/apod", q, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// NEOFeed lists near earth objects with a close approach between start and end
func (c *Client) NEOFeed(ctx context.Context, start, end string) (*NEOFeed, error) {
	q := url.Values{"start_date": {start}, "end_date": {end}}
	var f NEOFeed
	if err := c.doJSON(ctx, "/neo/rest/v1/feed", q, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func donkiRange(start, end string) url.Values {
	return url.Values{"startDate": {start}, "endDate": {end}}
}

func (c *Client) SolarFlares(ctx context.Context, start, end string) ([]SolarFlare, error) {
	var out []SolarFlare
	if err := c.doJSON(ctx, "/DONKI/FLR", donkiRange(start, end), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GeomagneticStorms(ctx context.Context, start, end string) ([]GeomagneticStorm, error) {
	var out []GeomagneticStorm
	if err := c.doJSON(ctx, "/DONKI/GST", donkiRange(start, end), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CoronalMassEjections(ctx context.Context, start, end string) ([]CoronalMassEjection, error) {
	var out []CoronalMassEjection
	if err := c.doJSON(ctx, "/DONKI/CME", donkiRange(start, end), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EONETEvents lists natural events, optionally filtered by category.
// EONET is keyless.
func (c *Client) EONETEvents(ctx context.Context, category string, limit int) (*EONETResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if category != "" {
		q.Set("category", category)
	}
	var out EONETResponse
	if err := upstream.GetJSON(ctx, c.http, eonetName, buildURL(c.eonetURL, "/events", q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
