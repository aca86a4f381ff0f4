package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
	err    error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeCounterStore) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	if f.counts[key] == 1 {
		f.ttls[key] = ttl
	}
	return f.counts[key], nil
}

func rateLimitedHandler(store *fakeCounterStore, limit int) http.Handler {
	policy := NewRateLimitPolicy("public", time.Minute, limit)
	return RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	store := newFakeCounterStore()
	handler := rateLimitedHandler(store, 3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/public/checkout-session", nil)
		req.RemoteAddr = "203.0.113.10:4567"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	store := newFakeCounterStore()
	handler := rateLimitedHandler(store, 2)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/public/checkout-session", nil)
		req.RemoteAddr = "203.0.113.10:4567"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, time.Minute, store.ttls["rl:ip:public:203.0.113.10"])
}

func TestRateLimit_ScopesByIP(t *testing.T) {
	store := newFakeCounterStore()
	handler := rateLimitedHandler(store, 1)

	for _, addr := range []string{"203.0.113.10:1", "203.0.113.11:1"} {
		req := httptest.NewRequest(http.MethodPost, "/public/checkout-session", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_UsesForwardedFor(t *testing.T) {
	store := newFakeCounterStore()
	handler := rateLimitedHandler(store, 1)

	req := httptest.NewRequest(http.MethodPost, "/public/checkout-session", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, store.counts, "rl:ip:public:198.51.100.7")
}

func TestRateLimit_DisabledPolicyPassesThrough(t *testing.T) {
	store := newFakeCounterStore()
	policy := NewRateLimitPolicy("public", 0, 0)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.counts)
}
