package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/routeplanner/pkg/auth"
)

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(tokenValidator auth.TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)

		if authHeader == "" {
			c.SendStatus(fiber.StatusUnauthorized)
			return c.JSON(fiber.Map{
				"error": "Authorization header is required",
			})
		}

		account, err := auth.Authenticate(c.UserContext(), tokenValidator, authHeader)
		if err != nil {
			c.SendStatus(fiber.StatusUnauthorized)
			return c.JSON(fiber.Map{
				"error": "Invalid auth token",
			})
		}

		c.Locals("account_userid", account.UserID)
		c.Locals("account", account)

		return c.Next()
	}
}

// RequireManager must run after EnsureValidToken.
func RequireManager() fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := c.Locals("account").(*auth.Account)
		if !ok || !account.IsManager() {
			c.SendStatus(fiber.StatusForbidden)
			return c.JSON(fiber.Map{
				"error": "Route manager role is required",
			})
		}

		return c.Next()
	}
}
