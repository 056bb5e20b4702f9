package router

import (
	"strconv"

	"github.com/YuChenWang/ShopPay/app/controllers"
	"github.com/YuChenWang/ShopPay/internal/pkg/env"
	"github.com/YuChenWang/ShopPay/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	// Rate-limit state lives in Redis so limits hold across instances.
	store := redis.New(redis.Config{
		Host: env.GetEnv("CACHE_HOST", "localhost"),
		Port: port,
	})

	api := app.Group("/api", limiter.New(limiter.Config{Storage: store}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Operator endpoints, ops-key protected.
	v1 := api.Group("/v1", middleware.OpsKeyMiddleware())
	v1.Get("/webhook-events", controllers.HandleOpsWebhookEvents)
	v1.Get("/audit-log", controllers.HandleOpsAuditLog)
	v1.Post("/reconcile", controllers.HandleOpsReconcile)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
