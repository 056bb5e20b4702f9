package middleware

import (
	"strings"

	"github.com/YuChenWang/ShopPay/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// OpsKeyMiddleware authenticates operator requests carrying the X-Ops-Key
// header against the bcrypt hash in OPS_API_KEY_HASH. Only the hash lives in
// the environment.
func OpsKeyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := extractOpsKey(c)
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing ops key"})
		}

		hash := env.GetEnv("OPS_API_KEY_HASH", "")
		if hash == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Ops API not configured"})
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid ops key"})
		}

		return c.Next()
	}
}

func extractOpsKey(c *fiber.Ctx) string {
	if key := strings.TrimSpace(c.Get("X-Ops-Key")); key != "" {
		return key
	}
	// Also accept "Authorization: Bearer <key>" for curl convenience.
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
