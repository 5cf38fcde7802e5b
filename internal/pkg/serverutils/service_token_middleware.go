package serverutils

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// ServiceTokenMiddleware guards internal operational endpoints. The
// caller must present the shared token in X-Atlas-Service-Token.
func ServiceTokenMiddleware(token string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if token == "" {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(503, "Service token not configured"))
		}
		got := ctx.Get("X-Atlas-Service-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid service token"))
		}
		return ctx.Next()
	}
}
