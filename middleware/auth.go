package middleware

import (
	"strings"

	"aurora/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// parseClaims extracts and validates JWT claims from the Authorization header
func parseClaims(c *fiber.Ctx) (*Claims, error) {
	cfg := config.GetConfig()

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	return claims, nil
}

// AuthRequired validates the JWT token and stores its identity on the context
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseClaims(c)
		if err != nil {
			e := err.(*fiber.Error)
			return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
		}

		c.Locals("userID", claims.UserID)

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) uint {
	if userID, ok := c.Locals("userID").(uint); ok {
		return userID
	}
	return 0
}
