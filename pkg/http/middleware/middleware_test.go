package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	applogger "CryptoView/pkg/logger"
)

func TestStatusClass(t *testing.T) {
	cases := map[int]string{101: "1xx", 204: "2xx", 302: "3xx", 422: "4xx", 503: "5xx", 0: "5xx"}
	for code, want := range cases {
		if got := statusClass(code); got != want {
			t.Fatalf("statusClass(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestRecoverAndMetrics(t *testing.T) {
	l := applogger.NewNop()
	e := echo.New()
	e.Use(Recover(l), Metrics(l, time.Nanosecond), RequestLogging(l))
	e.GET("/boom", func(echo.Context) error { panic("kaboom") })
	e.GET("/missing", func(echo.Context) error { return echo.ErrNotFound })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected handler error to be rendered once, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins: []string{"https://*.cryptoview.app"},
		AllowMethods: []string{http.MethodGet},
		MaxAge:       600,
	}))
	e.GET("/api/market", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/market", nil)
	req.Header.Set("Origin", "https://beta.cryptoview.app")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "X-Viewer-ID")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://beta.cryptoview.app" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
	if rec.Header().Get("Access-Control-Max-Age") != "600" || rec.Header().Get("Access-Control-Allow-Headers") != "X-Viewer-ID" {
		t.Fatalf("unexpected preflight headers %v", rec.Header())
	}
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{AllowOrigins: []string{"https://*.cryptoview.app"}, ExposeHeaders: []string{"X-Viewer-ID"}}))
	e.GET("/api/market", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, origin := range []string{"https://evil.com", "https://a.b.cryptoview.app"} {
		req := httptest.NewRequest(http.MethodGet, "/api/market", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Fatalf("origin %s: expected pass-through without CORS, got %d %v", origin, rec.Code, rec.Header())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/market", nil)
	req.Header.Set("Origin", "https://app.cryptoview.app")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Expose-Headers") != "X-Viewer-ID" {
		t.Fatalf("expected exposed viewer header, got %v", rec.Header())
	}
}
