package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/briangreenhill/astroview/internal/upstream"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"

	apiName = "Gemini API"
)

// ErrEmptyResponse is returned when the model produced no text candidate
var ErrEmptyResponse = errors.New("gemini: response has no text candidate")

type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
	model   string
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

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
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
		model:   DefaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// GenerateContent sends a single-turn prompt and returns the first
// candidate's text.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "models", c.model+":generateContent")

	body := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	req, err := upstream.NewJSONRequest(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	var resp generateResponse
	if err := upstream.Do(c.http, apiName, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
