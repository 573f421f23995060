package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func newTestLimiter() (*RateLimiter, *stepClock) {
	clock := &stepClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter()
	rl.SetClock(clock.Now)
	return rl, clock
}

func TestRateLimiterAllow(t *testing.T) {
	rl, _ := newTestLimiter()

	for i := 0; i < 5; i++ {
		if ok, _ := rl.Allow("key", 5, time.Minute); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retry := rl.Allow("key", 5, time.Minute)
	if ok {
		t.Error("6th request should be denied")
	}
	if retry != time.Minute {
		t.Errorf("retry = %v, want %v", retry, time.Minute)
	}

	if ok, _ := rl.Allow("other", 5, time.Minute); !ok {
		t.Error("keys must be counted independently")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl, clock := newTestLimiter()

	for i := 0; i < 3; i++ {
		rl.Allow("key", 3, 10*time.Second)
	}
	if ok, _ := rl.Allow("key", 3, 10*time.Second); ok {
		t.Error("should be blocked within window")
	}

	clock.t = clock.t.Add(10 * time.Second)
	if ok, _ := rl.Allow("key", 3, 10*time.Second); !ok {
		t.Error("should be allowed after window ends")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl, clock := newTestLimiter()

	rl.Allow("expired", 5, time.Second)
	clock.t = clock.t.Add(2 * time.Second)
	rl.Allow("active", 5, time.Minute)

	if n := rl.Cleanup(); n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.windows["expired"]; ok {
		t.Error("expired window should have been cleaned up")
	}
	if _, ok := rl.windows["active"]; !ok {
		t.Error("active window should still exist")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := newTestLimiter()
	keyFunc := func(r *http.Request) string { return "test" }

	handler := RateLimit(rl, keyFunc, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("3rd request: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if got := rec.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want %q", got, "60")
	}
}

func TestRemoteIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		want   string
	}{
		{"host and port", "10.0.0.1:5555", "10.0.0.1"},
		{"ipv6", "[::1]:8080", "::1"},
		{"no port", "pipe", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			r.Header.Set("X-Forwarded-For", "1.2.3.4")
			if got := RemoteIP(r); got != tt.want {
				t.Errorf("RemoteIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	pt, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.7 ", "", "::1"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, ip := range []string{"10.20.30.40", "192.168.1.7", "::1", "::ffff:10.0.0.1"} {
		if !pt.trusts(ip) {
			t.Errorf("%s should be trusted", ip)
		}
	}
	for _, ip := range []string{"192.168.1.8", "11.0.0.1", "garbage"} {
		if pt.trusts(ip) {
			t.Errorf("%s should not be trusted", ip)
		}
	}

	if pt, err := ParseTrustedProxies(nil); err != nil || pt != nil {
		t.Errorf("empty list = %v, %v; want nil, nil", pt, err)
	}
	if _, err := ParseTrustedProxies([]string{"10.0.0.300"}); err == nil {
		t.Error("expected error for bad address")
	}
	if _, err := ParseTrustedProxies([]string{"10.0.0.0/40"}); err == nil {
		t.Error("expected error for bad prefix")
	}
}

func TestClientIP(t *testing.T) {
	pt, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tests := []struct {
		name   string
		trust  *ProxyTrust
		header map[string]string
		remote string
		want   string
	}{
		{"untrusted peer ignores forwarded", pt, map[string]string{"X-Forwarded-For": "1.2.3.4"}, "8.8.8.8:5555", "8.8.8.8"},
		{"untrusted peer ignores real ip", pt, map[string]string{"X-Real-IP": "1.2.3.4"}, "8.8.8.8:5555", "8.8.8.8"},
		{"nil trust ignores headers", nil, map[string]string{"X-Forwarded-For": "1.2.3.4"}, "10.0.0.1:5555", "10.0.0.1"},
		{"trusted peer", pt, map[string]string{"X-Forwarded-For": "1.2.3.4"}, "10.0.0.1:5555", "1.2.3.4"},
		{"spoofed head of chain", pt, map[string]string{"X-Forwarded-For": "6.6.6.6, 1.2.3.4, 10.0.0.2"}, "10.0.0.1:5555", "1.2.3.4"},
		{"trusted peer real ip", pt, map[string]string{"X-Real-IP": "5.6.7.8"}, "10.0.0.1:5555", "5.6.7.8"},
		{"all hops trusted", pt, map[string]string{"X-Forwarded-For": "10.0.0.3"}, "10.0.0.1:5555", "10.0.0.1"},
		{"trusted peer no headers", pt, nil, "10.0.0.1:5555", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := tt.trust.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
