package cache

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"
)

// DefaultSweepInterval is how often Run removes expired entries
const DefaultSweepInterval = 2 * time.Minute

// Stats is a point-in-time view of the store counters
type Stats struct {
	Keys    int    `json:"keys"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Expired uint64 `json:"expired"` // entries removed by a sweep
}

// HitRate formats hits / (hits + misses) as a percentage string
func (s Stats) HitRate() string {
	total := s.Hits + s.Misses
	if s.Hits == 0 || total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(s.Hits)/float64(total)*100)
}

// Store is an in-memory key/value map with per-key expiry.
// It is safe for concurrent use.
type Store struct {
	items    *ttlcache.Cache[string, []byte]
	interval time.Duration
	expired  atomic.Uint64
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithSweepInterval sets the period of the background sweep started by Run
func WithSweepInterval(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewStore creates an empty store
func NewStore(opts ...StoreOption) *Store {
	s := &Store{interval: DefaultSweepInterval}
	for _, o := range opts {
		o(s)
	}
	// Reads never extend an entry's life: the TTL window starts at write time.
	s.items = ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	s.items.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[string, []byte]) {
		if reason == ttlcache.EvictionReasonExpired {
			s.expired.Add(1)
		}
	})
	return s
}

// Get returns the value for key. Expired entries that have not been swept yet
// are reported as absent. Every call counts as exactly one hit or one miss.
func (s *Store) Get(key string) ([]byte, bool) {
	item := s.items.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set stores value under key for ttl. A non-positive ttl is rejected.
func (s *Store) Set(key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	s.items.Set(key, value, ttl)
	return nil
}

// Delete removes key and reports whether a live entry was present
func (s *Store) Delete(key string) bool {
	present := s.items.Has(key)
	s.items.Delete(key)
	return present
}

// DeleteFunc removes every key for which match returns true and returns how
// many keys were removed.
func (s *Store) DeleteFunc(match func(key string) bool) int {
	deleted := 0
	for _, key := range s.items.Keys() {
		if match(key) {
			s.items.Delete(key)
			deleted++
		}
	}
	return deleted
}

// DeleteMatching removes every key containing pattern. An empty pattern
// clears the store.
func (s *Store) DeleteMatching(pattern string) int {
	if pattern == "" {
		n := s.items.Len()
		s.items.DeleteAll()
		return n
	}
	return s.DeleteFunc(func(key string) bool {
		return strings.Contains(key, pattern)
	})
}

// Keys returns a snapshot of the live keys. Expired entries are left out even
// before a sweep removes them.
func (s *Store) Keys() []string {
	return s.items.Keys()
}

// Stats returns the hit and miss counters together with the current key count
func (s *Store) Stats() Stats {
	m := s.items.Metrics()
	return Stats{
		Keys:    s.items.Len(),
		Hits:    m.Hits,
		Misses:  m.Misses,
		Expired: s.expired.Load(),
	}
}

// Sweep removes every expired entry and returns how many entries left the
// store while it ran. Len and Keys already hide expired entries, so the count
// comes from the eviction metric.
func (s *Store) Sweep() int {
	before := s.items.Metrics().Evictions
	s.items.DeleteExpired()
	return int(s.items.Metrics().Evictions - before)
}

// Run sweeps expired entries every sweep interval until ctx is done
func (s *Store) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Debug().Dur("interval", s.interval).Msg("cache sweeper started")
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("cache sweeper stopped")
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("cache sweep")
			}
		}
	}
}
