package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(60, false)
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 60; i++ {
		assert.True(t, rl.Allow("a"), "request %d", i)
	}
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "buckets are per key")

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	now = now.Add(time.Hour)
	for i := 0; i < 60; i++ {
		assert.True(t, rl.Allow("a"))
	}
	assert.False(t, rl.Allow("a"), "refill is capped at the burst")
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(10, false)
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow("old")
	now = now.Add(20 * time.Minute)
	rl.Allow("fresh")

	rl.cleanup(10 * time.Minute)
	assert.NotContains(t, rl.buckets, "old")
	assert.Contains(t, rl.buckets, "fresh")

	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "203.0.113.7:5555", nil, false, "203.0.113.7"},
		{"headers ignored when untrusted", "203.0.113.7:5555", map[string]string{"X-Forwarded-For": "198.51.100.1"}, false, "203.0.113.7"},
		{"first forwarded hop", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, true, "198.51.100.1"},
		{"real ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.9"}, true, "198.51.100.9"},
		{"garbage header falls back", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "not-an-ip"}, true, "10.0.0.1"},
		{"no port", "203.0.113.7", nil, false, "203.0.113.7"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientIP(r, tc.trustProxy))
		})
	}
}
