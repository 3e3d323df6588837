package middleware

import (
	"strings"

	"plp-rushdesk/internal/config"
	"plp-rushdesk/internal/pkg/jwt"
	"plp-rushdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("displayName", claims.DisplayName)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// TokenFromQuery promotes a token query parameter to the Authorization
// header so AuthMiddleware can validate it (WebSocket handshakes cannot
// carry custom headers from a browser)
func TokenFromQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Query("token"); token != "" && c.Get("Authorization") == "" {
			c.Request().Header.Set("Authorization", "Bearer "+token)
		}
		return c.Next()
	}
}
