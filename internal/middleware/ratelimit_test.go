package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestRateLimiter(t *testing.T, config RateLimiterConfig) *RateLimiter {
	t.Helper()

	rl := NewRateLimiter(config)
	t.Cleanup(rl.Stop)

	return rl
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		Rate:            rate.Limit(1),
		Burst:           3,
		CleanupInterval: time.Minute,
	})

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestRateLimiter_ExceedingBurstReturns429(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		Rate:            rate.Limit(0.01),
		Burst:           2,
		CleanupInterval: time.Minute,
	})

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastCode int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", lastCode, http.StatusTooManyRequests)
	}
}

func TestRateLimiter_LimitIsPerClientIP(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		Rate:            rate.Limit(0.01),
		Burst:           1,
		CleanupInterval: time.Minute,
	})

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 1台目のクライアントがバーストを使い切る
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		handler.ServeHTTP(rec, req)
	}

	// 別クライアントは制限されない
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.2:12345"
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (別IPは独立して制限される)", rec.Code, http.StatusOK)
	}

	if got := rl.LimiterCount(); got != 2 {
		t.Errorf("LimiterCount = %d, want 2", got)
	}
}

func TestRateLimiter_Cleanup_RemovesStaleEntries(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		Rate:            rate.Limit(1),
		Burst:           1,
		CleanupInterval: 10 * time.Millisecond,
	})

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = fmt.Sprintf("192.0.2.%d:12345", i+1)
		handler.ServeHTTP(rec, req)
	}

	if got := rl.LimiterCount(); got != 3 {
		t.Fatalf("LimiterCount = %d, want 3", got)
	}

	// TTL（CleanupInterval×2）経過後のクリーンアップでエントリが消える
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if rl.LimiterCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("LimiterCount = %d, want 0 after cleanup", rl.LimiterCount())
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig(120)

	if config.Rate != rate.Limit(2) {
		t.Errorf("Rate = %v, want 2 req/sec", config.Rate)
	}
	if config.Burst != 120 {
		t.Errorf("Burst = %d, want 120", config.Burst)
	}
}
