package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// RequireAction ensures the caller's tier allows at least one of the actions.
func RequireAction(actions ...domain.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		for _, action := range actions {
			if principal.Tier().Allows(action) {
				return c.Next()
			}
		}
		return fiber.NewError(http.StatusForbidden, "insufficient tier")
	}
}

// RequireAuthenticated ensures a principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
