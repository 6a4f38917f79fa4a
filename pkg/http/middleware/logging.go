package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "CryptoView/pkg/logger"
)

// HeaderViewerID identifies the client whose selection state a request acts on.
const HeaderViewerID = "X-Viewer-ID"

// CauseKey is the echo context key handlers store a rendered error's cause under.
const CauseKey = "cryptoview.cause"

// RequestLogging logs HTTP requests. Server errors are logged at error level
// with the cause stored under CauseKey; everything else at debug.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	if l == nil {
		l = applogger.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			if err := next(c); err != nil {
				c.Set(CauseKey, err)
				c.Error(err)
			}

			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("route", c.Path()),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", status),
				applogger.Duration("latency", time.Since(start)),
			}
			if v := req.Header.Get(HeaderViewerID); v != "" {
				fields = append(fields, applogger.String("viewer", v))
			}
			if status < 500 {
				l.Debug("http request", fields...)
				return nil
			}
			if cause, ok := c.Get(CauseKey).(error); ok && cause != nil {
				fields = append(fields, applogger.Error(cause))
			}
			l.Error("http request failed", fields...)
			return nil
		}
	}
}
