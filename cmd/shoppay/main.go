package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/YuChenWang/ShopPay/app/repository"
	"github.com/YuChenWang/ShopPay/internal/pkg/cache"
	"github.com/YuChenWang/ShopPay/internal/pkg/database"
	"github.com/YuChenWang/ShopPay/internal/pkg/env"
	"github.com/YuChenWang/ShopPay/internal/pkg/router"
	"github.com/YuChenWang/ShopPay/internal/pkg/worker"
)

func main() {
	app := NewApplication()

	worker.GetManager().Start()
	defer worker.GetManager().Stop()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// init fiber app
	app := fiber.New(fiber.Config{
		// Gateway notifications are small; anything bigger is junk.
		BodyLimit: 1 << 20, // 1 MiB
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
