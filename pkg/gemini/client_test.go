package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		require.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		require.Empty(t, r.URL.RawQuery, "the key travels in a header")

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "explain", req.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Stars are "},{"text":"suns. "}]}}]}`))
	}))
	defer srv.Close()

	c, err := New("k", WithBaseURL(srv.URL+"/v1beta"), WithModel("gemini-test"))
	require.NoError(t, err)
	text, err := c.GenerateContent(context.Background(), "explain")
	require.NoError(t, err)
	require.Equal(t, "Stars are suns.", text)
}

func TestGenerateContentEmpty(t *testing.T) {
	for _, body := range []string{`{}`, `{"candidates":[{"content":{"parts":[]}}]}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		c, err := New("k", WithBaseURL(srv.URL))
		require.NoError(t, err)
		_, err = c.GenerateContent(context.Background(), "x")
		require.ErrorIs(t, err, ErrEmptyResponse)
		srv.Close()
	}
}

func TestNewDefaults(t *testing.T) {
	_, err := New("")
	require.Error(t, err)

	c, err := New("k", WithModel(""))
	require.NoError(t, err)
	require.Equal(t, DefaultModel, c.model)
}
