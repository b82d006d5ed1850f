package ratelim

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

func TestLimit_BurstThen429(t *testing.T) {
	l := NewRateLimiter(1, 3)
	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return frozen }
	h := l.Limit(ok)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/login", nil), nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/login", nil), nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	frozen = frozen.Add(time.Second)
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/login", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code, "a token refills after one second")
}

func TestLimit_PerClient(t *testing.T) {
	l := NewRateLimiter(1, 1)
	frozen := time.Now()
	l.now = func() time.Time { return frozen }

	a, _ := l.Allow("10.0.0.1")
	b, _ := l.Allow("10.0.0.2")
	again, retry := l.Allow("10.0.0.1")

	assert.True(t, a)
	assert.True(t, b)
	assert.False(t, again)
	assert.Greater(t, retry, time.Duration(0))
}

func TestPrune(t *testing.T) {
	l := NewRateLimiter(1, 1)
	start := time.Now()
	l.now = func() time.Time { return start }
	l.Allow("old")
	l.now = func() time.Time { return start.Add(10 * time.Minute) }
	l.Allow("new")

	assert.Equal(t, 1, l.Prune(5*time.Minute))
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "new")
}

func TestClientIP_IgnoresForwardedFromUntrustedPeer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", ClientIP(r, nil))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.0.2.7", ClientIP(r, nil))
}

func TestClientIP_TrustedProxy(t *testing.T) {
	l := NewRateLimiter(1, 1)
	require.NoError(t, l.TrustProxies([]string{"10.0.0.0/8", "192.0.2.7"}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:4444"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.9, 10.0.0.5")
	assert.Equal(t, "203.0.113.9", ClientIP(r, l.trusted), "rightmost untrusted hop")

	r.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.1.2.3", ClientIP(r, l.trusted))

	r.RemoteAddr = "192.0.2.7:80"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "198.51.100.1", ClientIP(r, l.trusted))

	assert.Error(t, l.TrustProxies([]string{"not-an-ip"}))
}

func TestLimit_SpoofedForwardedForSharesBucket(t *testing.T) {
	l := NewRateLimiter(0.01, 2)
	h := l.Limit(ok)

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		h(rec, req, nil)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed)
}
