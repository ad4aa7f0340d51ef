package middleware

import (
	"github.com/labstack/echo/v4"
)

// CORS sets permissive cross-origin headers on every response. Preflight
// requests still reach the route's OPTIONS handler, which answers them.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
			h.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)
			return next(c)
		}
	}
}
