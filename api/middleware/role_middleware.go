package middleware

import (
	"authcore/internal/entity"
	"authcore/internal/service"

	"github.com/labstack/echo/v4"
)

// RequireRole must run after RequireAuth.
func RequireRole(role entity.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			currentRole, ok := RoleFromContext(c)
			if !ok {
				return service.ErrMissingToken
			}
			if !currentRole.Allows(role) {
				return service.ErrForbidden
			}
			return next(c)
		}
	}
}
