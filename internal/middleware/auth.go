package middleware

import (
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected validates the HS256 access token and stores it in Locals
// under "user".
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized: invalid or expired token"))
		},
	})
}
