package models

import "time"

// PaymentDailyStats aggregates webhook dispositions per gateway and day.
// Counters accumulate in Redis and are flushed here by the background worker.
type PaymentDailyStats struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StatDate    time.Time `gorm:"type:date;not null;index:ux_payment_daily_stats_day,unique,priority:1" json:"stat_date"`
	Gateway     string    `gorm:"type:varchar(20);not null;index:ux_payment_daily_stats_day,unique,priority:2" json:"gateway"`
	Disposition string    `gorm:"type:varchar(40);not null;index:ux_payment_daily_stats_day,unique,priority:3" json:"disposition"`
	Count       int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
