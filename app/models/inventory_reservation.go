package models

import "time"

const (
	RESERVATION_STATUS_ACTIVE    = "active"
	RESERVATION_STATUS_COMMITTED = "committed"
	RESERVATION_STATUS_EXPIRED   = "expired"
)

// InventoryReservation is a per-line stock hold belonging to an order. Holds
// are created by the checkout flow (not part of this service) and committed
// here when the gateway confirms payment.
type InventoryReservation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OrderID     uint       `gorm:"not null;index" json:"order_id"`
	ProductSKU  string     `gorm:"type:varchar(64);not null;index" json:"product_sku"`
	Quantity    int        `gorm:"not null" json:"quantity"`
	Status      string     `gorm:"type:varchar(20);default:'active';index" json:"status"`
	CommittedAt *time.Time `gorm:"type:timestamp;default:null" json:"committed_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
