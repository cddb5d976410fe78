package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
)

type fakeRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateLimiter() *fakeRateLimiter {
	return &fakeRateLimiter{counts: make(map[string]int64)}
}

func (f *fakeRateLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	count := f.counts[scope]
	return count <= limit, count, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	limiter := newFakeRateLimiter()
	handler := RateLimit(NewRateLimitPolicy("builder", time.Minute, 2), limiter, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/pc-builder/recommend", nil)
		req = req.WithContext(WithSessionID(req.Context(), "sess-a"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
		if i == 2 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", rec.Code)
			}
			if rec.Header().Get("Retry-After") != "60" {
				t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("unexpected code %q", payload.Error.Code)
			}
		}
	}

	if limiter.counts["builder:ip:192.0.2.1"] != 3 {
		t.Fatalf("expected ip-scoped counter, got %v", limiter.counts)
	}
}

func TestRateLimit_KeysOnForwardedIP(t *testing.T) {
	limiter := newFakeRateLimiter()
	handler := RateLimit(NewRateLimitPolicy("builder", time.Minute, 5), limiter, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/pc-builder/recommend", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	req = req.WithContext(WithSessionID(req.Context(), "sess-a"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if limiter.counts["builder:ip:9.9.9.9"] != 1 {
		t.Fatalf("expected ip-scoped counter, got %v", limiter.counts)
	}
}

func TestRateLimit_ThrottlesClientsWithoutSession(t *testing.T) {
	limiter := newFakeRateLimiter()
	handler := Session(nil)(RateLimit(NewRateLimitPolicy("builder", time.Minute, 2), limiter, nil)(okHandler()))

	blocked := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/pc-builder/recommend", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			blocked++
		}
	}

	if blocked != 8 {
		t.Fatalf("expected 8 blocked requests, got %d", blocked)
	}
	if len(limiter.counts) != 1 {
		t.Fatalf("expected a single bucket, got %v", limiter.counts)
	}
}

func TestRateLimit_RotatingSessionsShareIPBucket(t *testing.T) {
	limiter := newFakeRateLimiter()
	handler := Session(nil)(RateLimit(NewRateLimitPolicy("builder", time.Minute, 1), limiter, nil)(okHandler()))

	codes := []int{}
	for _, session := range []string{"sess-1", "sess-2", "sess-3"} {
		req := httptest.NewRequest(http.MethodPost, "/api/pc-builder/recommend", nil)
		req.RemoteAddr = "203.0.113.8:40000"
		req.Header.Set(SessionHeader, session)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestRateLimitScopeWithoutIP(t *testing.T) {
	policy := NewRateLimitPolicy("builder", time.Minute, 1)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = ""
	req = req.WithContext(WithSessionID(req.Context(), "sess-a"))
	if got := policy.scope(req); got != "builder:session:sess-a" {
		t.Fatalf("expected client session scope, got %q", got)
	}

	minted := req.WithContext(withSessionMinted(req.Context()))
	if got := policy.scope(minted); got != "" {
		t.Fatalf("expected minted session to be ignored, got %q", got)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := newFakeRateLimiter()
	limiter.err = errors.New("redis down")
	handler := RateLimit(NewRateLimitPolicy("builder", time.Minute, 1), limiter, nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected limiter outage to pass through, got %d", rec.Code)
	}
}

func TestRateLimit_DisabledWithoutLimiter(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("builder", time.Minute, 1), nil, nil)(okHandler())
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected pass-through, got %d", rec.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	if got := clientIP(req); got != "1.2.3.4" {
		t.Fatalf("expected remote addr host, got %q", got)
	}
	req.Header.Set("X-Real-IP", "5.6.7.8")
	if got := clientIP(req); got != "5.6.7.8" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}
}
