package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			t.Fatalf("request %d rejected: %v", i, err)
		}
	}
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := handler(c); err != nil {
		t.Fatalf("first request rejected: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want 429", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestRateLimit_KeyedByTenant(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// Drain tenant A's bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("jwt_tenant_id", "clinic_a")
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Tenant B from the same IP still has a full bucket.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	c.Set("jwt_tenant_id", "clinic_b")
	if err := handler(c); err != nil {
		t.Errorf("tenant_b rejected by tenant_a's bucket: %v", err)
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond <= 0 || cfg.BurstSize <= 0 {
		t.Errorf("defaults not positive: %+v", cfg)
	}
}
