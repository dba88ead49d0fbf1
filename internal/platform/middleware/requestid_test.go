package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequestID_Generates(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestID()(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rid := rec.Header().Get(RequestIDHeader)
	if rid == "" {
		t.Error("no request id on response")
	}
	if got, _ := c.Get("request_id").(string); got != rid {
		t.Errorf("context id %q != response id %q", got, rid)
	}
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestID()(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rid := rec.Header().Get(RequestIDHeader); rid != "client-supplied-id" {
		t.Errorf("request id = %q, want client-supplied-id", rid)
	}
}
