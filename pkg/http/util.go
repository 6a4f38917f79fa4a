package http

import (
	"strings"

	"github.com/labstack/echo/v4"

	"CryptoView/pkg/http/middleware"
)

// HeaderViewerID identifies the client whose selection state a request acts on.
const HeaderViewerID = middleware.HeaderViewerID

// ViewerID returns the viewer header, falling back to the client IP.
func ViewerID(c echo.Context) string {
	if v := strings.TrimSpace(c.Request().Header.Get(HeaderViewerID)); v != "" {
		return v
	}
	return c.RealIP()
}
