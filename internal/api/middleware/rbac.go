package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RBAC lets the request through only when the token role is one of roles.
// It must run after Auth or AuthPage.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(string)
			if role == "" || !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "this account cannot access this page")
			}
			return next(c)
		}
	}
}
