package repository

import (
	"time"

	"github.com/YuChenWang/ShopPay/app/models"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order-related database operations
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	FindIDByTradeNo(tradeNo string) (uint, error)
	FindIDByUUID(orderUUID string) (uint, error)
}

// WebhookEventRepository is the idempotency ledger. CreateIfNew must be a
// single atomic insert-or-ignore against the (gateway, event_id) unique key;
// concurrent inserts of the same key have exactly one winner.
type WebhookEventRepository interface {
	CreateIfNew(event *models.PaymentWebhookEvent) (created bool, stored *models.PaymentWebhookEvent, err error)
	GetByID(id uint) (*models.PaymentWebhookEvent, error)
	ListRecent(limit int) ([]models.PaymentWebhookEvent, error)
	ListUnarchivedBefore(cutoff time.Time, limit int) ([]models.PaymentWebhookEvent, error)
	MarkArchived(id uint) error
}

// AuditLogRepository appends payment audit rows and serves the
// reconciliation sweep.
type AuditLogRepository interface {
	Append(entry *models.PaymentAuditLog) error
	ListByOrderID(orderID uint, limit int) ([]models.PaymentAuditLog, error)
	ListRecent(limit int) ([]models.PaymentAuditLog, error)
	ListUnresolvedProcessingErrors(limit int) ([]models.PaymentAuditLog, error)
	MarkResolved(id uint) error
}

// StatsRepository persists flushed disposition counters.
type StatsRepository interface {
	AddToDailyStats(day time.Time, gateway, disposition string, delta int64) error
}

// Repositories holds all repository instances
type Repositories struct {
	Order        OrderRepository
	WebhookEvent WebhookEventRepository
	AuditLog     AuditLogRepository
	Stats        StatsRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:        NewOrderRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
		AuditLog:     NewAuditLogRepository(db),
		Stats:        NewStatsRepository(db),
	}
}
