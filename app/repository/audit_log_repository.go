package repository

import (
	"time"

	"github.com/YuChenWang/ShopPay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// auditLogRepository implements the AuditLogRepository interface
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository instance
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Append writes one audit row
func (r *auditLogRepository) Append(entry *models.PaymentAuditLog) error {
	return r.db.Create(entry).Error
}

// ListByOrderID returns audit rows for one order, newest first
func (r *auditLogRepository) ListByOrderID(orderID uint, limit int) ([]models.PaymentAuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.PaymentAuditLog
	err := r.db.Where("order_id = ?", orderID).Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// ListRecent returns the newest audit rows for the ops API
func (r *auditLogRepository) ListRecent(limit int) ([]models.PaymentAuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.PaymentAuditLog
	err := r.db.Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// ListUnresolvedProcessingErrors returns processing_error rows the
// reconciliation sweep has not dealt with yet, oldest first.
func (r *auditLogRepository) ListUnresolvedProcessingErrors(limit int) ([]models.PaymentAuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []models.PaymentAuditLog
	err := r.db.
		Where("event_kind = ? AND resolved_at IS NULL", models.AUDIT_PROCESSING_ERROR).
		Order("id ASC").Limit(limit).Find(&entries).Error
	return entries, err
}

// MarkResolved stamps a processing_error row after reconciliation
func (r *auditLogRepository) MarkResolved(id uint) error {
	now := time.Now()
	return r.db.Model(&models.PaymentAuditLog{}).
		Where("id = ?", id).
		Update("resolved_at", &now).Error
}

// statsRepository implements the StatsRepository interface
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository instance
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// AddToDailyStats upserts one (day, gateway, disposition) counter row,
// adding delta to the existing count on conflict.
func (r *statsRepository) AddToDailyStats(day time.Time, gateway, disposition string, delta int64) error {
	row := &models.PaymentDailyStats{
		StatDate:    day.Truncate(24 * time.Hour),
		Gateway:     gateway,
		Disposition: disposition,
		Count:       delta,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stat_date"},
			{Name: "gateway"},
			{Name: "disposition"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("count + ?", delta),
			"updated_at": time.Now(),
		}),
	}).Create(row).Error
}
