package repository

import (
	"time"

	"github.com/YuChenWang/ShopPay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// CreateIfNew inserts the event unless (gateway, event_id) already exists.
// This is one INSERT ... ON CONFLICT DO NOTHING, never a read-then-write,
// so two concurrent deliveries of the same event get exactly one row and
// RowsAffected tells the loser apart from the winner.
func (r *webhookEventRepository) CreateIfNew(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "gateway"},
			{Name: "event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("gateway = ? AND event_id = ?", event.Gateway, event.EventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// GetByID retrieves a ledger row by its ID
func (r *webhookEventRepository) GetByID(id uint) (*models.PaymentWebhookEvent, error) {
	var event models.PaymentWebhookEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListRecent returns the newest ledger rows for the ops API
func (r *webhookEventRepository) ListRecent(limit int) ([]models.PaymentWebhookEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.PaymentWebhookEvent
	err := r.db.Order("id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// ListUnarchivedBefore returns ledger rows older than cutoff that have not
// been shipped to cold storage yet.
func (r *webhookEventRepository) ListUnarchivedBefore(cutoff time.Time, limit int) ([]models.PaymentWebhookEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []models.PaymentWebhookEvent
	err := r.db.Where("archived_at IS NULL AND received_at < ?", cutoff).
		Order("id ASC").Limit(limit).Find(&events).Error
	return events, err
}

// MarkArchived stamps a ledger row after its payload reached cold storage
func (r *webhookEventRepository) MarkArchived(id uint) error {
	now := time.Now()
	return r.db.Model(&models.PaymentWebhookEvent{}).
		Where("id = ?", id).
		Update("archived_at", &now).Error
}
