package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole admits callers whose token carries one of roles. It must run
// after JWT, which stores the role claim.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyUserRole).(string)
			if role == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "token carries no role"})
			}
			if !slices.Contains(roles, role) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "role " + role + " may not call this route"})
			}
			return next(c)
		}
	}
}
