package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// Order payment lifecycle. An order starts reserved (stock held, waiting
	// for the gateway notification) and moves to paid exactly once.
	PAYMENT_STATUS_RESERVED = "reserved"
	PAYMENT_STATUS_PAID     = "paid"
	PAYMENT_STATUS_EXPIRED  = "expired"

	GATEWAY_ECPAY   = "ecpay"
	GATEWAY_LINEPAY = "linepay"
)

type Order struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UUID          string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	TradeNo       string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"trade_no" validate:"required,max=64"`
	CustomerEmail string         `gorm:"type:varchar(200)" json:"customer_email" validate:"omitempty,email,max=200"`
	AmountTWD     int64          `gorm:"not null" json:"amount_twd" validate:"gte=0"`
	PaymentStatus string         `gorm:"type:varchar(20);default:'reserved';index" json:"payment_status" validate:"oneof=reserved paid expired"`
	Gateway       string         `gorm:"type:varchar(20)" json:"gateway"`
	GatewayTxnRef string         `gorm:"type:varchar(100)" json:"gateway_txn_ref"`
	ReservedUntil *time.Time     `gorm:"type:timestamp;default:null" json:"reserved_until"`
	PaidAt        *time.Time     `gorm:"type:timestamp;default:null" json:"paid_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Order) Validate() error {
	v := validator.New()

	return v.Struct(o)
}

// NewOrder creates a reserved order with a fresh UUID. TradeNo is the
// merchant-assigned reference sent to gateways that cannot carry the UUID.
func NewOrder(tradeNo, customerEmail string, amountTWD int64, reservedUntil time.Time) (*Order, error) {
	o := &Order{
		UUID:          uuid.New().String(),
		TradeNo:       tradeNo,
		CustomerEmail: customerEmail,
		AmountTWD:     amountTWD,
		PaymentStatus: PAYMENT_STATUS_RESERVED,
		ReservedUntil: &reservedUntil,
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}

	return o, nil
}

// IsPaid reports whether the paid transition already happened.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PAYMENT_STATUS_PAID
}
