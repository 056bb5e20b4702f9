package models

import "time"

// PaymentWebhookEvent is the idempotency ledger. One row per distinct
// real-world gateway notification; the unique (gateway, event_id) index is
// what makes concurrent re-deliveries collapse to a single winner. Rows are
// append-only and double as the replay cache.
type PaymentWebhookEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Gateway     string     `gorm:"type:varchar(20);not null;index:ux_payment_webhook_events_gateway_event,unique,priority:1;index" json:"gateway"`
	EventID     string     `gorm:"type:varchar(191);not null;index:ux_payment_webhook_events_gateway_event,unique,priority:2" json:"event_id"`
	EventType   string     `gorm:"type:varchar(50);not null;index" json:"event_type"`
	PayloadJSON string     `gorm:"type:longtext;not null" json:"payload_json"`
	ReceivedAt  time.Time  `gorm:"autoCreateTime;index" json:"received_at"`
	ArchivedAt  *time.Time `gorm:"type:timestamp;default:null;index" json:"archived_at,omitempty"`
}

const (
	WEBHOOK_EVENT_PAYMENT_RESULT = "payment_result"
)
