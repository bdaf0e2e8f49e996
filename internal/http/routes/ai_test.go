package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/astroview/internal/cache"
)

func TestSimplifyDemo(t *testing.T) {
	ts := newTestServer(t, Clients{})
	rec := ts.do(t, http.MethodPost, "/api/ai/simplify", map[string]string{"text": "Syzygy occurs.", "context": "eclipses"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[simplifyResponse](t, rec)
	require.True(t, body.Demo)
	require.Equal(t, "Syzygy occurs.", body.Simplified)
	require.Equal(t, "eclipses", body.Context)
}

func TestSimplifyLiveIsNeverCached(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req.Contents[0].Parts[0].Text, "Simplify the following text about eclipses")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"The Sun, Moon and Earth line up."}]}}]}`))
	})
	ts := newTestServer(t, liveClients(t, u))

	for range 2 {
		rec := ts.do(t, http.MethodPost, "/api/ai/simplify", map[string]string{"text": "Syzygy occurs.", "context": "eclipses"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get(cache.HeaderCache))
		body := decode[simplifyResponse](t, rec)
		require.Equal(t, "The Sun, Moon and Earth line up.", body.Simplified)
		require.Equal(t, "Syzygy occurs.", body.Original)
	}
	require.Equal(t, int32(2), u.calls.Load())
	require.Zero(t, ts.Cache.Stats().Keys)
}

func TestSimplifyFallsBackToOriginal(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ts := newTestServer(t, liveClients(t, u))

	rec := ts.do(t, http.MethodPost, "/api/ai/simplify", map[string]string{"text": "Syzygy occurs."})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[simplifyResponse](t, rec)
	require.True(t, body.Fallback)
	require.Equal(t, "Syzygy occurs.", body.Simplified)
}

func TestSimplifyValidation(t *testing.T) {
	ts := newTestServer(t, Clients{})

	rec := ts.do(t, http.MethodPost, "/api/ai/simplify", map[string]string{"context": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Text is required", decode[map[string]any](t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/api/ai/simplify/ask", "{}")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Question is required", decode[map[string]any](t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/api/ai/simplify", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "ValidationError", decode[map[string]any](t, rec)["error"])
}

func TestAsk(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  Because of Rayleigh scattering.  "}]}}]}`))
	})
	ts := newTestServer(t, liveClients(t, u))

	body := decode[askResponse](t, ts.do(t, http.MethodPost, "/api/ai/simplify/ask", map[string]string{"question": "Why is the sky blue?"}))
	require.Equal(t, "Because of Rayleigh scattering.", body.Answer)
	require.Equal(t, "Why is the sky blue?", body.Question)
	require.False(t, body.Error)
}

func TestAskApologizesOnFailure(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	ts := newTestServer(t, liveClients(t, u))

	body := decode[askResponse](t, ts.do(t, http.MethodPost, "/api/ai/simplify/ask", map[string]string{"question": "Why?"}))
	require.True(t, body.Error)
	require.Contains(t, body.Answer, "temporarily unable")
}

func TestAskDemo(t *testing.T) {
	ts := newTestServer(t, Clients{})
	body := decode[askResponse](t, ts.do(t, http.MethodPost, "/api/ai/simplify/ask", map[string]string{"question": "Why?"}))
	require.True(t, body.Demo)
}
