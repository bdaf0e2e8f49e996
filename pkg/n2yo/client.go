package n2yo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/briangreenhill/astroview/internal/upstream"
)

const (
	DefaultBaseURL = "https://api.n2yo.com/rest/v1/satellite"

	// ISS is the NORAD catalogue number of the International Space Station
	ISS = 25544

	apiName = "N2YO API"
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

// N2YO takes every argument as a path segment; only the key is a query param.
func (c *Client) doJSON(ctx context.Context, out any, segments ...string) error {
	u := *c.baseURL
	u.Path = path.Join(append([]string{u.Path}, segments...)...)
	u.RawQuery = url.Values{"apiKey": {c.apiKey}}.Encode()
	return upstream.GetJSON(ctx, c.http, apiName, u.String(), out)
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// checkInfo surfaces errors N2YO reports with a 200 status
func checkInfo(r response) error {
	if r.Error != "" {
		return fmt.Errorf("%s: %s", apiName, r.Error)
	}
	return nil
}

// Positions returns the predicted ground track of a satellite for the next
// seconds seconds, observed from (lat, lon, alt).
func (c *Client) Positions(ctx context.Context, noradID int, lat, lon, alt float64, seconds int) (*PositionsResponse, error) {
	if seconds <= 0 {
		seconds = 1
	}
	var out PositionsResponse
	err := c.doJSON(ctx, &out, "positions", strconv.Itoa(noradID), ftoa(lat), ftoa(lon), ftoa(alt), strconv.Itoa(seconds))
	if err != nil {
		return nil, err
	}
	if err := checkInfo(out.response); err != nil {
		return nil, err
	}
	return &out, nil
}

// VisualPasses returns optically visible passes over the next days days
// lasting at least minVisibility seconds.
func (c *Client) VisualPasses(ctx context.Context, noradID int, lat, lon, alt float64, days, minVisibility int) (*PassesResponse, error) {
	var out PassesResponse
	err := c.doJSON(ctx, &out, "visualpasses", strconv.Itoa(noradID), ftoa(lat), ftoa(lon), ftoa(alt),
		strconv.Itoa(days), strconv.Itoa(minVisibility))
	if err != nil {
		return nil, err
	}
	if err := checkInfo(out.response); err != nil {
		return nil, err
	}
	return &out, nil
}

// Above lists satellites within radius degrees of the observer's zenith.
// category 0 means all categories.
func (c *Client) Above(ctx context.Context, lat, lon, alt float64, radius, category int) (*AboveResponse, error) {
	var out AboveResponse
	err := c.doJSON(ctx, &out, "above", ftoa(lat), ftoa(lon), ftoa(alt), strconv.Itoa(radius), strconv.Itoa(category))
	if err != nil {
		return nil, err
	}
	if err := checkInfo(out.response); err != nil {
		return nil, err
	}
	return &out, nil
}
