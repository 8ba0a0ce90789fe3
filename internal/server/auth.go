package server

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set("WWW-Authenticate", `Basic realm="Restricted"`)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
	})
}

// authMiddleware enforces HTTP basic auth. Auth is disabled only when both
// credentials are empty; a partially configured secret never fails open.
func authMiddleware(username, password string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if username == "" && password == "" {
			return c.Next()
		}
		if username == "" || password == "" {
			return unauthorized(c, "authentication misconfigured: both username and password must be set")
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "authorization header required")
		}

		// Case-insensitive scheme comparison as per RFC 7235.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Basic") {
			return unauthorized(c, "invalid authorization scheme, use Basic authentication")
		}

		decoded, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			return unauthorized(c, "invalid authorization header format")
		}

		credentials := strings.SplitN(string(decoded), ":", 2)
		if len(credentials) != 2 {
			return unauthorized(c, "invalid credentials format")
		}

		// Constant-time comparison to prevent timing attacks.
		usernameMatch := subtle.ConstantTimeCompare([]byte(credentials[0]), []byte(username)) == 1
		passwordMatch := subtle.ConstantTimeCompare([]byte(credentials[1]), []byte(password)) == 1
		if !usernameMatch || !passwordMatch {
			return unauthorized(c, "invalid username or password")
		}

		return c.Next()
	}
}
