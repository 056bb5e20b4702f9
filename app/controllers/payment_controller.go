package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/YuChenWang/ShopPay/app/models"
	"github.com/YuChenWang/ShopPay/internal/pkg/database"
	"github.com/YuChenWang/ShopPay/internal/pkg/metrics/counter"
	"github.com/YuChenWang/ShopPay/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const webhookTimeout = 15 * time.Second

// HandleECPayWebhook receives ECPay's form-encoded payment result
// notification. ECPay retries on anything that is not the literal "1|OK".
func HandleECPayWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	meta := payment.RequestMeta{Path: c.Path()}

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	res := svc.Process(ctx, models.GATEWAY_ECPAY, rawBody, meta)
	trackDisposition(models.GATEWAY_ECPAY, res.Disposition)

	status, body := ecpayResponse(res.Disposition)
	return c.Status(status).SendString(body)
}

// ecpayResponse maps a disposition onto ECPay's response contract: "1|OK"
// acknowledges, "0|<reason>" rejects, "0|Error" asks for a later retry.
func ecpayResponse(d payment.Disposition) (int, string) {
	switch d {
	case payment.DispositionBadRequest:
		return fiber.StatusBadRequest, "0|Parameter Error"
	case payment.DispositionSignatureInvalid:
		return fiber.StatusBadRequest, "0|CheckMacValue Error"
	case payment.DispositionDisabled:
		return fiber.StatusBadRequest, "0|Service Unavailable"
	case payment.DispositionStoreError:
		return fiber.StatusInternalServerError, "0|Error"
	default:
		return fiber.StatusOK, "1|OK"
	}
}

// HandleECPayHealth answers ECPay's companion GET with a liveness payload.
func HandleECPayHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"gateway": models.GATEWAY_ECPAY,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleLinePayWebhook receives LINE Pay's JSON confirm notification. The
// signature rides in X-LINE-Authorization with its nonce alongside.
func HandleLinePayWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	meta := payment.RequestMeta{
		Path:      c.Path(),
		Signature: strings.TrimSpace(c.Get("X-LINE-Authorization")),
		Nonce:     strings.TrimSpace(c.Get("X-LINE-Authorization-Nonce")),
	}

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	res := svc.Process(ctx, models.GATEWAY_LINEPAY, rawBody, meta)
	trackDisposition(models.GATEWAY_LINEPAY, res.Disposition)

	status, body := linePayResponse(res.Disposition)
	return c.Status(status).JSON(body)
}

// linePayResponse maps a disposition onto LINE Pay's contract. Unresolvable
// orders still answer {"ok":true}; retrying cannot fix a reference that will
// never resolve.
func linePayResponse(d payment.Disposition) (int, fiber.Map) {
	switch d {
	case payment.DispositionSignatureInvalid:
		return fiber.StatusUnauthorized, fiber.Map{"ok": false, "error": "Invalid signature"}
	case payment.DispositionBadRequest:
		return fiber.StatusBadRequest, fiber.Map{"ok": false, "error": "Malformed payload"}
	case payment.DispositionDisabled:
		return fiber.StatusForbidden, fiber.Map{"ok": false, "error": "Gateway disabled"}
	case payment.DispositionStoreError:
		return fiber.StatusInternalServerError, fiber.Map{"ok": false, "error": "Internal error"}
	default:
		return fiber.StatusOK, fiber.Map{"ok": true}
	}
}

// trackDisposition bumps the redis counter best-effort; metrics never affect
// the webhook response.
func trackDisposition(gateway string, d payment.Disposition) {
	if err := counter.AddDisposition(gateway, string(d)); err != nil {
		log.Warnf("[Payment] disposition counter failed (%s/%s): %v", gateway, d, err)
	}
}
