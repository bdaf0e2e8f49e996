// Package astronomyapi wraps the AstronomyAPI bodies/positions endpoint.
package astronomyapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/briangreenhill/astroview/internal/upstream"
)

const (
	DefaultBaseURL = "https://api.astronomyapi.com/api/v2"

	apiName = "Astronomy API"
)

// ErrNoData is returned when the positions table has no cell for the body
var ErrNoData = errors.New("astronomyapi: empty positions table")

type Client struct {
	http    *http.Client
	baseURL *url.URL
	appID   string
	secret  string
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

func New(appID, secret string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(appID) == "" || strings.TrimSpace(secret) == "" {
		return nil, errors.New("application id and secret required")
	}
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
		appID:   appID,
		secret:  secret,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// MoonPhase is the moon cell's extraInfo. Values are passed through as the
// API encodes them; some are numbers and some numeric strings.
type MoonPhase struct {
	Phase struct {
		Angel    json.RawMessage `json:"angel"`
		Fraction json.RawMessage `json:"fraction"`
		String   string          `json:"string"`
	} `json:"phase"`
	Illumination json.RawMessage `json:"illumination"`
	Age          json.RawMessage `json:"age"`
	Elongation   json.RawMessage `json:"elongation"`
	Magnitude    json.RawMessage `json:"magnitude"`
}

type positionsResponse struct {
	Data struct {
		Table struct {
			Rows []struct {
				Cells []struct {
					Date      string          `json:"date"`
					ExtraInfo json.RawMessage `json:"extraInfo"`
				} `json:"cells"`
			} `json:"rows"`
		} `json:"table"`
	} `json:"data"`
}

// Moon returns the moon's phase information for date (YYYY-MM-DD) at
// midnight, observed from (0, 0).
func (c *Client) Moon(ctx context.Context, date string) (*MoonPhase, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "/bodies/positions/moon")
	u.RawQuery = url.Values{
		"latitude":  {"0"},
		"longitude": {"0"},
		"elevation": {"0"},
		"from_date": {date},
		"to_date":   {date},
		"time":      {"00:00:00"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.appID, c.secret)

	var resp positionsResponse
	if err := upstream.Do(c.http, apiName, req, &resp); err != nil {
		return nil, err
	}
	rows := resp.Data.Table.Rows
	if len(rows) == 0 || len(rows[0].Cells) == 0 {
		return nil, ErrNoData
	}

	var mp MoonPhase
	if err := json.Unmarshal(rows[0].Cells[0].ExtraInfo, &mp); err != nil {
		return nil, err
	}
	return &mp, nil
}
