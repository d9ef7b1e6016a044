package middleware

import (
	"cargodesk/internal/access"

	"github.com/labstack/echo/v4"
)

// principal keeps a missing admin as a nil interface so access sees no principal.
func principal(c echo.Context) access.Principal {
	if admin := CurrentAdmin(c); admin != nil {
		return admin
	}
	return nil
}

// RequirePermission allows the request only if the admin's matrix grants action on resource.
func RequirePermission(resource access.Resource, action access.Action) echo.MiddlewareFunc {
	return guard(func(c echo.Context) access.Decision {
		return access.Authorize(principal(c), resource, action)
	})
}

// RequireRole allows the request only for the given roles.
func RequireRole(roles ...access.Role) echo.MiddlewareFunc {
	return guard(func(c echo.Context) access.Decision {
		return access.AuthorizeRole(principal(c), roles...)
	})
}

// RequireCreator allows the request only for the super admin.
func RequireCreator() echo.MiddlewareFunc {
	return guard(func(c echo.Context) access.Decision {
		return access.AuthorizeCreator(principal(c))
	})
}

func guard(decide func(echo.Context) access.Decision) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := decide(c).Err(); err != nil {
				return err
			}
			return next(c)
		}
	}
}
