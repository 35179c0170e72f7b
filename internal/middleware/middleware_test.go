package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterStore_AllowAndCleanup(t *testing.T) {
	s := NewLimiterStore(5, 5, time.Hour)
	defer s.Stop()

	key := "10.0.0.1|alice"
	for i := 0; i < 5; i++ {
		require.True(t, s.Allow(key), "expected allow at iteration %d", i)
	}
	assert.False(t, s.Allow(key), "burst is consumed")
	assert.True(t, s.Allow("10.0.0.1|bob"), "keys are independent")

	s.sweep(time.Now().Add(time.Minute))
	s.mu.Lock()
	assert.Empty(t, s.clients)
	s.mu.Unlock()

	s.Stop()
}

func postLogin(username string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(url.Values{"username": {username}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.1:1234"
	return req
}

func TestRateLimit(t *testing.T) {
	store := NewLimiterStore(1, 2, time.Hour)
	defer store.Stop()

	var seen []string
	handler := RateLimit(store, http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.PostFormValue("username"))
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, postLogin("Alice"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, []string{"Alice", "Alice"}, seen, "form stays readable downstream")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postLogin("Alice"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, postLogin("alice"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "usernames are normalized before keying")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, postLogin("bob"))
	assert.Equal(t, http.StatusNoContent, rec.Code, "another username from the same address has its own bucket")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code, "GET is not limited")
}

func TestRateLimitDisabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RateLimit(nil, http.MethodPost)(ok)
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, postLogin("alice"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}
