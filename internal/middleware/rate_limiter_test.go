package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

func doRequest(e *echo.Echo, handler echo.HandlerFunc, mw echo.MiddlewareFunc, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Real-Ip", ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := mw(handler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimiter(rate.Limit(1), 3, 100)

	for i := 0; i < 3; i++ {
		if code := doRequest(e, okHandler, mw, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d got %d, want 200", i, code)
		}
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimiter(rate.Limit(0.001), 2, 100)

	doRequest(e, okHandler, mw, "10.0.0.2")
	doRequest(e, okHandler, mw, "10.0.0.2")

	if code := doRequest(e, okHandler, mw, "10.0.0.2"); code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", code)
	}
}

func TestRateLimiterSeparatePerIP(t *testing.T) {
	e := echo.New()
	mw := RateLimiter(rate.Limit(0.001), 1, 100)

	if code := doRequest(e, okHandler, mw, "10.0.0.3"); code != http.StatusOK {
		t.Fatalf("first ip got %d", code)
	}
	if code := doRequest(e, okHandler, mw, "10.0.0.4"); code != http.StatusOK {
		t.Fatalf("second ip should have its own bucket, got %d", code)
	}
}

func TestRateLimiterBoundedMap(t *testing.T) {
	e := echo.New()
	// tiny map: old entries must be evicted, and new clients still served
	mw := RateLimiter(rate.Limit(1), 1, 2)

	for i := 0; i < 50; i++ {
		ip := "10.1.0." + string(rune('0'+i%10))
		doRequest(e, okHandler, mw, ip)
	}

	if code := doRequest(e, okHandler, mw, "10.2.0.99"); code != http.StatusOK {
		t.Fatalf("fresh client after churn got %d", code)
	}
}

func TestRateLimiterEvictsStalestEntry(t *testing.T) {
	e := echo.New()
	mw := RateLimiter(rate.Limit(0.0001), 1, 1)

	doRequest(e, okHandler, mw, "10.3.0.1")
	if code := doRequest(e, okHandler, mw, "10.3.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("drained bucket got %d, want 429", code)
	}

	// every insertion over the bound evicts the stalest entry, which is
	// the drained one
	for i := 0; i < 20; i++ {
		doRequest(e, okHandler, mw, fmt.Sprintf("10.3.1.%d", i))
	}

	if code := doRequest(e, okHandler, mw, "10.3.0.1"); code != http.StatusOK {
		t.Fatalf("evicted client should get a fresh bucket, got %d", code)
	}
}
