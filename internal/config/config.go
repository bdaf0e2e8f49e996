// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Port           string   `env:"PORT" envDefault:"3001"`
	Environment    string   `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	BaseURL        string   `env:"BASE_URL" envDefault:"http://localhost:5173"`
	// APIURL is the public address of this server, used in unsubscribe links
	APIURL string `env:"API_URL"`

	NASA        NASAConfig
	N2YO        N2YOConfig
	OpenWeather OpenWeatherConfig
	Astronomy   AstronomyConfig
	Gemini      GeminiConfig

	Cache CacheConfig

	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	AdminToken        string `env:"ADMIN_TOKEN"`
	UnsubscribeSecret string `env:"UNSUBSCRIBE_SECRET"`
	SubscriptionsFile string `env:"SUBSCRIPTIONS_FILE" envDefault:"data/email-subscriptions.json"`
	DatabaseURL       string `env:"DATABASE_URL"`
	RedisAddr         string `env:"REDIS_ADDR"`

	Email EmailConfig
}

// NASAConfig covers api.nasa.gov; EONET needs no key
type NASAConfig struct {
	APIKey string `env:"NASA_API_KEY" envDefault:"DEMO_KEY"`
}

type N2YOConfig struct {
	APIKey string `env:"N2YO_API_KEY"`
}

type OpenWeatherConfig struct {
	APIKey string `env:"OPENWEATHER_API_KEY"`
}

// AstronomyConfig holds AstronomyAPI basic-auth credentials
type AstronomyConfig struct {
	AppID  string `env:"ASTRONOMY_API_ID"`
	Secret string `env:"ASTRONOMY_API_SECRET"`
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

// CacheConfig tunes the response cache
type CacheConfig struct {
	DefaultTTL  time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"10m"`
	CheckPeriod time.Duration `env:"CACHE_CHECK_PERIOD" envDefault:"2m"`
	Coalesce    bool          `env:"CACHE_COALESCE" envDefault:"false"`
}

// EmailConfig points at the SMTP relay; an empty host logs mail to stdout
type EmailConfig struct {
	Host     string `env:"EMAIL_HOST"`
	Port     int    `env:"EMAIL_PORT" envDefault:"1025"`
	User     string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASSWORD"`
	From     string `env:"EMAIL_FROM" envDefault:"AstroView <no-reply@astroview.local>"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Cache.DefaultTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_DEFAULT_TTL must be positive, got %s", c.Cache.DefaultTTL))
	}
	if c.Cache.CheckPeriod <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_CHECK_PERIOD must be positive, got %s", c.Cache.CheckPeriod))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout))
	}
	if c.Email.Port <= 0 || c.Email.Port > 65535 {
		errs = append(errs, fmt.Errorf("EMAIL_PORT out of range: %d", c.Email.Port))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// HasN2YO returns true if satellite tracking can use live data
func (c *Config) HasN2YO() bool {
	return c.N2YO.APIKey != ""
}

// HasOpenWeather returns true if sky conditions can use live data
func (c *Config) HasOpenWeather() bool {
	return c.OpenWeather.APIKey != ""
}

// HasAstronomy returns true if both AstronomyAPI credentials are set
func (c *Config) HasAstronomy() bool {
	return c.Astronomy.AppID != "" && c.Astronomy.Secret != ""
}

// HasGemini returns true if AI simplification is available
func (c *Config) HasGemini() bool {
	return c.Gemini.APIKey != ""
}

// HasSMTP returns true if outgoing mail goes to a real relay
func (c *Config) HasSMTP() bool {
	return c.Email.Host != ""
}

// PublicAPIURL returns APIURL, or the local listen address when unset
func (c *Config) PublicAPIURL() string {
	if c.APIURL != "" {
		return strings.TrimRight(c.APIURL, "/")
	}
	return "http://localhost:" + c.Port
}

// SMTPAddr returns host:port of the mail relay
func (c *Config) SMTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Email.Host, c.Email.Port)
}
