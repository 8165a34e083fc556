package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/cantina/internal/domain"
)

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(remote string, actor *domain.Actor) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if actor != nil {
			req = req.WithContext(domain.ContextWithActor(req.Context(), *actor))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("1.2.3.4:1000", nil); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send("1.2.3.4:2000", nil); code != http.StatusTooManyRequests {
		t.Fatalf("expected same IP on another port to be throttled, got %d", code)
	}
	if code := send("1.2.3.4:3000", &domain.Actor{ID: "emp-1"}); code != http.StatusOK {
		t.Fatalf("expected actor to have its own bucket, got %d", code)
	}
}

func TestRateLimiter_CleanupLimiters(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("ip:old")
	now = now.Add(time.Hour)
	rl.getLimiter("ip:new")

	if removed := rl.CleanupLimiters(30 * time.Minute); removed != 1 {
		t.Fatalf("expected one idle limiter removed, got %d", removed)
	}
	if _, ok := rl.visitors["ip:new"]; !ok {
		t.Fatal("recent limiter must be kept")
	}
}

func TestGetIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	if got := getIP(req); got != "9.9.9.9" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "5.6.7.8:4321"
	if got := getIP(req); got != "5.6.7.8" {
		t.Fatalf("expected host without port, got %q", got)
	}
}
