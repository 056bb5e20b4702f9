package controllers

import (
	"context"
	"strconv"
	"time"

	"github.com/YuChenWang/ShopPay/app/repository"
	"github.com/YuChenWang/ShopPay/internal/pkg/database"
	"github.com/YuChenWang/ShopPay/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
)

// HandleOpsWebhookEvents lists recent idempotency ledger rows.
func HandleOpsWebhookEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	events, err := repository.GetGlobalFactory().GetWebhookEventRepository().ListRecent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_events_unavailable"})
	}
	return c.JSON(fiber.Map{"events": events})
}

// HandleOpsAuditLog lists recent audit rows, optionally filtered by order.
func HandleOpsAuditLog(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	repo := repository.GetGlobalFactory().GetAuditLogRepository()

	if orderParam := c.Query("order_id"); orderParam != "" {
		orderID, err := strconv.ParseUint(orderParam, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_order_id"})
		}
		entries, err := repo.ListByOrderID(uint(orderID), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "audit_log_unavailable"})
		}
		return c.JSON(fiber.Map{"entries": entries})
	}

	entries, err := repo.ListRecent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "audit_log_unavailable"})
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// HandleOpsReconcile triggers a reconciliation sweep on demand, outside the
// worker schedule.
func HandleOpsReconcile(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resolved, err := payment.NewReconcilerFromDB(database.GetDB()).Sweep(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconcile_failed"})
	}
	return c.JSON(fiber.Map{"resolved": resolved})
}
