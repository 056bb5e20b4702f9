package router

import (
	"github.com/YuChenWang/ShopPay/app/controllers"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Gateway notification endpoints. No auth middleware here: the payloads
	// authenticate themselves via per-gateway signatures.
	webhooks := app.Group("/webhooks/payment")
	webhooks.Post("/ecpay", controllers.HandleECPayWebhook)
	webhooks.Get("/ecpay", controllers.HandleECPayHealth)
	webhooks.Post("/linepay", controllers.HandleLinePayWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
