package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/YuChenWang/ShopPay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Settler applies the paid transition. Safe to invoke more than once per
// order; the status check and the write share one locked transaction, so the
// idempotency ledger is defense in depth here, not the only guard.
type Settler interface {
	ApplyPaymentSuccess(ctx context.Context, orderID uint, gateway, gatewayTxnRef string) error
}

type gormSettler struct {
	db *gorm.DB
}

// NewSettler creates a settler backed by GORM.
func NewSettler(db *gorm.DB) Settler {
	return &gormSettler{db: db}
}

// ApplyPaymentSuccess marks the order paid and commits its inventory
// reservations in a single transaction. The order row is locked FOR UPDATE
// first; an already-paid order is a no-op, never a second transition.
func (s *gormSettler) ApplyPaymentSuccess(ctx context.Context, orderID uint, gateway, gatewayTxnRef string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, orderID).Error; err != nil {
			return fmt.Errorf("settlement: load order %d: %w", orderID, err)
		}

		if order.IsPaid() {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"payment_status":  models.PAYMENT_STATUS_PAID,
			"gateway":         gateway,
			"gateway_txn_ref": gatewayTxnRef,
			"paid_at":         &now,
		}).Error; err != nil {
			return fmt.Errorf("settlement: mark order %d paid: %w", orderID, err)
		}

		if err := tx.Model(&models.InventoryReservation{}).
			Where("order_id = ? AND status = ?", orderID, models.RESERVATION_STATUS_ACTIVE).
			Updates(map[string]interface{}{
				"status":       models.RESERVATION_STATUS_COMMITTED,
				"committed_at": &now,
			}).Error; err != nil {
			return fmt.Errorf("settlement: commit reservations for order %d: %w", orderID, err)
		}

		return nil
	})
}
