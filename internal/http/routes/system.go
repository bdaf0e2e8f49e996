package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/astroview/internal/cache"
	"github.com/briangreenhill/astroview/internal/http/httperr"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"name":    "AstroView API",
		"version": Version,
		"status":  "running",
		"docs":    "/api",
		"health":  "/health",
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	endpoints := map[string]any{"health": "/health"}
	for name, eps := range s.Sources.Index() {
		endpoints[name] = eps
	}
	writeJSON(w, map[string]any{
		"message":   "AstroView API Server",
		"version":   Version,
		"endpoints": endpoints,
	})
}

type cacheStats struct {
	Keys    int    `json:"keys"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	HitRate string `json:"hitRate"`
}

func newCacheStats(st cache.Stats) cacheStats {
	return cacheStats{Keys: st.Keys, Hits: st.Hits, Misses: st.Misses, HitRate: st.HitRate()}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    float64           `json:"uptime"` // seconds
	Cache     cacheStats        `json:"cache"`
	Sources   map[string]string `json:"sources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	writeJSON(w, healthResponse{
		Status:    "ok",
		Timestamp: now.UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Seconds(),
		Cache:     newCacheStats(s.Cache.Stats()),
		Sources:   s.Sources.Status(),
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, newCacheStats(s.Cache.Stats()))
}

type clearResponse struct {
	Success bool   `json:"success"`
	Removed int    `json:"removed"`
	Pattern string `json:"pattern"`
}

// handleCacheClear removes entries whose key contains pattern. source=<name>
// selects every entry under that source's mount; neither clears the store.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pattern, source := q.Get("pattern"), strings.TrimSpace(q.Get("source"))
	if pattern != "" && source != "" {
		s.Errors.Write(w, r, httperr.Validation("pattern and source are mutually exclusive", nil))
		return
	}
	if source != "" {
		src, ok := s.Sources.Get(source)
		if !ok {
			s.Errors.Write(w, r, httperr.Validation(fmt.Sprintf("unknown source %q", source), map[string]any{
				"sources": s.Sources.Status(),
			}))
			return
		}
		pattern = src.Mount + "/"
	}

	removed := s.CacheMW.Invalidate(pattern)
	hlog.FromRequest(r).Info().Str("pattern", pattern).Int("removed", removed).Msg("cache invalidated")
	writeJSON(w, clearResponse{Success: true, Removed: removed, Pattern: pattern})
}
