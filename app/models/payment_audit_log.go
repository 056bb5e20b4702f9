package models

import "time"

const (
	AUDIT_RECEIVED          = "received"
	AUDIT_SIGNATURE_INVALID = "signature_invalid"
	AUDIT_ORDER_NOT_FOUND   = "order_not_found"
	AUDIT_ORDER_ID_MISSING  = "order_id_missing"
	AUDIT_ORDER_ID_INVALID  = "order_id_invalid"
	AUDIT_PAYMENT_FAILED    = "payment_failed"
	AUDIT_PROCESSING_ERROR  = "processing_error"
)

// PaymentAuditLog records every notification disposition, valid or not.
// OrderID stays null when the order could not be resolved; the row is written
// regardless. Append-only except for ResolvedAt, which the reconciliation
// sweep sets once a processing_error row has been dealt with.
type PaymentAuditLog struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	OrderID        *uint      `gorm:"index" json:"order_id,omitempty"`
	WebhookEventID *uint      `gorm:"index" json:"webhook_event_id,omitempty"`
	Gateway        string     `gorm:"type:varchar(20);not null;index" json:"gateway"`
	EventKind      string     `gorm:"type:varchar(40);not null;index" json:"event_kind"`
	GatewayTxnRef  string     `gorm:"type:varchar(100)" json:"gateway_txn_ref"`
	RawPayload     string     `gorm:"type:longtext" json:"raw_payload"`
	Detail         string     `gorm:"type:text" json:"detail"`
	ResolvedAt     *time.Time `gorm:"type:timestamp;default:null;index" json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
