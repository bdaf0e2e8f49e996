package cache

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreSetGet(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("missing")
	require.False(t, ok)

	require.NoError(t, s.Set("a:1", []byte(`{"v":1}`), time.Minute))
	got, ok := s.Get("a:1")
	require.True(t, ok)
	require.JSONEq(t, `{"v":1}`, string(got))

	// overwrite replaces the value
	require.NoError(t, s.Set("a:1", []byte(`{"v":2}`), time.Minute))
	got, ok = s.Get("a:1")
	require.True(t, ok)
	require.JSONEq(t, `{"v":2}`, string(got))
}

func TestStoreRejectsInvalidInput(t *testing.T) {
	s := NewStore()

	require.ErrorIs(t, s.Set("k", []byte("{}"), 0), ErrInvalidTTL)
	require.ErrorIs(t, s.Set("k", []byte("{}"), -time.Second), ErrInvalidTTL)
	require.ErrorIs(t, s.Set("", []byte("{}"), time.Second), ErrInvalidKey)

	_, ok := s.Get("k")
	require.False(t, ok, "rejected writes must not create entries")
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Set("short", []byte("1"), 50*time.Millisecond))

	_, ok := s.Get("short")
	require.True(t, ok)

	time.Sleep(120 * time.Millisecond)

	_, ok = s.Get("short")
	require.False(t, ok, "expired entries must read as absent before any sweep")
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Set("k", []byte("1"), time.Minute))

	require.True(t, s.Delete("k"))
	require.False(t, s.Delete("k"))
	_, ok := s.Get("k")
	require.False(t, ok)
}

func TestStoreDeleteMatching(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Set("a:1", []byte("1"), 60*time.Second))
	require.NoError(t, s.Set("b:2", []byte("2"), 60*time.Second))

	require.Equal(t, 1, s.DeleteMatching("a:"))
	require.NotContains(t, s.Keys(), "a:1")
	require.Contains(t, s.Keys(), "b:2")

	require.Equal(t, 0, s.DeleteMatching("zzz"))
}

func TestStoreDeleteMatchingEmptyClearsAll(t *testing.T) {
	s := NewStore()
	for _, k := range []string{"/api/nasa/apod{}", "/api/nasa/neo{}", "/api/satellite/iss{}"} {
		require.NoError(t, s.Set(k, []byte("{}"), time.Minute))
	}

	require.Equal(t, 3, s.DeleteMatching(""))
	require.Empty(t, s.Keys())
}

func TestStoreDeleteFunc(t *testing.T) {
	s := NewStore()
	for _, k := range []string{"x1", "x2", "y1"} {
		require.NoError(t, s.Set(k, []byte("{}"), time.Minute))
	}

	n := s.DeleteFunc(func(key string) bool { return key[0] == 'x' })
	require.Equal(t, 2, n)

	keys := s.Keys()
	sort.Strings(keys)
	require.Equal(t, []string{"y1"}, keys)
}

func TestStoreStatsMonotonic(t *testing.T) {
	s := NewStore()

	before := s.Stats()
	_, _ = s.Get("absent")
	after := s.Stats()
	require.Equal(t, before.Misses+1, after.Misses)
	require.Equal(t, before.Hits, after.Hits)

	require.NoError(t, s.Set("k", []byte("1"), time.Minute))
	afterSet := s.Stats()
	require.Equal(t, after.Hits, afterSet.Hits, "set must not move counters")
	require.Equal(t, after.Misses, afterSet.Misses, "set must not move counters")

	_, _ = s.Get("k")
	final := s.Stats()
	require.Equal(t, afterSet.Hits+1, final.Hits)
	require.Equal(t, afterSet.Misses, final.Misses)

	// deletes never decrease counters
	s.DeleteMatching("")
	cleared := s.Stats()
	require.GreaterOrEqual(t, cleared.Hits, final.Hits)
	require.GreaterOrEqual(t, cleared.Misses, final.Misses)
	require.Equal(t, 0, cleared.Keys)
}

func TestStatsHitRate(t *testing.T) {
	require.Equal(t, "0%", Stats{}.HitRate())
	require.Equal(t, "0%", Stats{Misses: 3}.HitRate())
	require.Equal(t, "75.00%", Stats{Hits: 3, Misses: 1}.HitRate())
}

func TestStoreSweepRemovesExpired(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Set("gone", []byte("1"), 5*time.Millisecond))
	require.NoError(t, s.Set("kept", []byte("1"), time.Minute))
	time.Sleep(20 * time.Millisecond)

	// hidden from readers but still held until swept
	require.Equal(t, []string{"kept"}, s.Keys())
	require.Zero(t, s.Stats().Expired)

	require.Equal(t, 1, s.Sweep())
	require.Equal(t, 0, s.Sweep())
	require.Eventually(t, func() bool {
		return s.Stats().Expired == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"kept"}, s.Keys())
}

func TestStoreRunSweepsExpired(t *testing.T) {
	s := NewStore(WithSweepInterval(20 * time.Millisecond))
	require.NoError(t, s.Set("gone", []byte("1"), 10*time.Millisecond))
	require.NoError(t, s.Set("kept", []byte("1"), time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return s.Stats().Expired == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, 0, s.Sweep(), "Run already removed the expired entry")
	require.Equal(t, []string{"kept"}, s.Keys())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
