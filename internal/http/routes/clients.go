package routes

import (
	"fmt"
	"net/http"

	"github.com/briangreenhill/astroview/internal/config"
	"github.com/briangreenhill/astroview/pkg/astronomyapi"
	"github.com/briangreenhill/astroview/pkg/gemini"
	"github.com/briangreenhill/astroview/pkg/n2yo"
	"github.com/briangreenhill/astroview/pkg/nasa"
	"github.com/briangreenhill/astroview/pkg/openweather"
)

// Clients holds the upstream API clients. A nil client puts its routes in
// demo mode; NASA always has a client since it falls back to DEMO_KEY.
type Clients struct {
	NASA        *nasa.Client
	N2YO        *n2yo.Client
	OpenWeather *openweather.Client
	Astronomy   *astronomyapi.Client
	Gemini      *gemini.Client
}

// NewClients builds a client for every upstream whose credentials are set
func NewClients(cfg *config.Config, h *http.Client) (Clients, error) {
	c := Clients{
		NASA: nasa.New(cfg.NASA.APIKey, nasa.WithHTTPClient(h)),
	}
	var err error
	if cfg.HasN2YO() {
		if c.N2YO, err = n2yo.New(cfg.N2YO.APIKey, n2yo.WithHTTPClient(h)); err != nil {
			return Clients{}, fmt.Errorf("n2yo client: %w", err)
		}
	}
	if cfg.HasOpenWeather() {
		if c.OpenWeather, err = openweather.New(cfg.OpenWeather.APIKey, openweather.WithHTTPClient(h)); err != nil {
			return Clients{}, fmt.Errorf("openweather client: %w", err)
		}
	}
	if cfg.HasAstronomy() {
		if c.Astronomy, err = astronomyapi.New(cfg.Astronomy.AppID, cfg.Astronomy.Secret, astronomyapi.WithHTTPClient(h)); err != nil {
			return Clients{}, fmt.Errorf("astronomy client: %w", err)
		}
	}
	if cfg.HasGemini() {
		if c.Gemini, err = gemini.New(cfg.Gemini.APIKey, gemini.WithHTTPClient(h), gemini.WithModel(cfg.Gemini.Model)); err != nil {
			return Clients{}, fmt.Errorf("gemini client: %w", err)
		}
	}
	return c, nil
}
