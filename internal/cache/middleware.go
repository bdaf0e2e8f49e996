package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is used by routes registered without their own TTL
const DefaultTTL = 10 * time.Minute

// Response headers describing how a response was produced
const (
	HeaderCache    = "X-Cache"
	HeaderCacheTTL = "X-Cache-TTL"
)

// Middleware caches successful JSON responses of GET handlers
type Middleware struct {
	store      Cache
	defaultTTL time.Duration
	coalesce   bool
	group      singleflight.Group
	now        func() time.Time
}

// MiddlewareOption configures a Middleware
type MiddlewareOption func(*Middleware)

// WithDefaultTTL sets the TTL used when a route is registered with ttl 0
func WithDefaultTTL(d time.Duration) MiddlewareOption {
	return func(m *Middleware) {
		if d > 0 {
			m.defaultTTL = d
		}
	}
}

// WithCoalescing makes concurrent misses for the same key share a single
// downstream call. Without it every concurrent miss runs the handler and the
// last writer's entry wins.
func WithCoalescing() MiddlewareOption {
	return func(m *Middleware) { m.coalesce = true }
}

// NewMiddleware creates a cache middleware backed by store
func NewMiddleware(store Cache, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		store:      store,
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// DefaultTTL returns the TTL applied to routes registered with ttl 0
func (m *Middleware) DefaultTTL() time.Duration {
	return m.defaultTTL
}

// Handler returns a decorator that caches the wrapped handler's responses for
// ttl. A zero ttl selects the default; a negative ttl panics.
func (m *Middleware) Handler(ttl time.Duration) func(http.Handler) http.Handler {
	if ttl < 0 {
		panic(fmt.Sprintf("cache: negative ttl %s", ttl))
	}
	if ttl == 0 {
		ttl = m.defaultTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			logger := zerolog.Ctx(r.Context())
			key, err := KeyForRequest(r)
			if err != nil {
				logger.Warn().Err(err).Msg("cache key derivation failed, bypassing cache")
				next.ServeHTTP(w, r)
				return
			}

			if body, ok := m.store.Get(key); ok {
				logger.Debug().Str("key", key).Msg("cache hit")
				m.writeHit(w, body)
				return
			}

			logger.Debug().Str("key", key).Msg("cache miss")
			rec, stored := m.fill(key, ttl, next, r)
			m.writeFresh(w, rec, stored, ttl)
		})
	}
}

// Invalidate removes every entry whose key contains pattern; an empty pattern
// clears the store. It returns the number of removed entries.
func (m *Middleware) Invalidate(pattern string) int {
	return m.store.DeleteMatching(pattern)
}

// fill runs the downstream handler into a recorder and stores its body when
// the response is cacheable.
func (m *Middleware) fill(key string, ttl time.Duration, next http.Handler, r *http.Request) (*recorder, bool) {
	run := func() *recorder {
		rec := newRecorder()
		next.ServeHTTP(rec, r)
		if !rec.cacheable() {
			return rec
		}
		if err := m.store.Set(key, rec.body.Bytes(), ttl); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("cache store failed")
			return rec
		}
		rec.stored = true
		zerolog.Ctx(r.Context()).Debug().Str("key", key).Dur("ttl", ttl).Msg("cached")
		return rec
	}

	if !m.coalesce {
		rec := run()
		return rec, rec.stored
	}

	v, _, _ := m.group.Do(key, func() (any, error) {
		return run(), nil
	})
	rec := v.(*recorder)
	return rec, rec.stored
}

func (m *Middleware) writeHit(w http.ResponseWriter, body []byte) {
	tagged := tagJSON(body,
		field{"_cached", true},
		field{"_cacheTime", m.now().UTC().Format(time.RFC3339)},
	)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderCache, "HIT")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tagged)
}

func (m *Middleware) writeFresh(w http.ResponseWriter, rec *recorder, stored bool, ttl time.Duration) {
	h := w.Header()
	for k, v := range rec.header {
		h[k] = v
	}

	body := rec.body.Bytes()
	if stored {
		seconds := int64(ttl / time.Second)
		body = tagJSON(body,
			field{"_cached", false},
			field{"_cacheTTL", seconds},
		)
		h.Del("Content-Length")
		h.Set(HeaderCache, "MISS")
		h.Set(HeaderCacheTTL, strconv.FormatInt(seconds, 10))
	}

	w.WriteHeader(rec.statusCode())
	_, _ = w.Write(body)
}

type field struct {
	name  string
	value any
}

// tagJSON appends fields to a JSON object body. Anything that is not a JSON
// object (arrays, scalars, invalid JSON) is returned unchanged.
func tagJSON(body []byte, fields ...field) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) < 2 || trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' || !json.Valid(trimmed) {
		return body
	}

	inner := bytes.TrimSpace(trimmed[1 : len(trimmed)-1])
	var buf bytes.Buffer
	buf.Grow(len(trimmed) + 64)
	buf.WriteByte('{')
	buf.Write(inner)
	for i, f := range fields {
		v, err := json.Marshal(f.value)
		if err != nil {
			return body
		}
		if len(inner) > 0 || i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(f.name)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// recorder buffers a downstream response so it can be stored before it is
// forwarded.
type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
	stored bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header)}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}

func (r *recorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *recorder) cacheable() bool {
	status := r.statusCode()
	if status < 200 || status >= 300 || r.body.Len() == 0 {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return false
	}
	return json.Valid(r.body.Bytes())
}
