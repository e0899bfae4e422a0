package middleware

import (
	"strings"

	"go-pos-ws/internal/service"
	"go-pos-ws/internal/session"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// Session returns the caller set by RequireAuth. Unauthenticated routes get
// an empty context, which every service rejects.
func Session(c *fiber.Ctx) session.Context {
	if sess, ok := c.Locals(sessionKey).(session.Context); ok {
		return sess
	}
	return session.Context{}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.Fields(c.Get("Authorization"))
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth validates the bearer token and stores the caller's session
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		token, ok := BearerToken(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		sess, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(code string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Session(c).Can(code) {
			return c.Next()
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + code + "' privilege",
		})
	}
}

// RequireAnyPrivilege passes when the user holds at least one of codes.
func RequireAnyPrivilege(codes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := Session(c)
		for _, code := range codes {
			if sess.Can(code) {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(codes, ", ") + " privileges",
		})
	}
}
