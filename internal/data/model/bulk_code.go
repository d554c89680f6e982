package model

import "time"

// BulkCode 兑换码模型
// code 上的主键是全局唯一性的仲裁者
type BulkCode struct {
	Code          string     `gorm:"primaryKey;column:code"`
	PurchaseEmail string     `gorm:"column:purchase_email"`
	PurchasePhone string     `gorm:"column:purchase_phone"`
	UnitPrice     float64    `gorm:"column:unit_price"`
	TotalPaid     float64    `gorm:"column:total_paid"`
	Currency      string     `gorm:"column:currency"`
	ReferenceID   string     `gorm:"column:reference_id;index:idx_reference_id"`
	IsUsed        bool       `gorm:"column:is_used"`
	UsedAt        *time.Time `gorm:"column:used_at"`
	UsedByPhone   string     `gorm:"column:used_by_phone"`
	RedeemedPinID string     `gorm:"column:redeemed_pin_id"`
	PurchasedAt   time.Time  `gorm:"column:purchased_at"`
	ExpiresAt     time.Time  `gorm:"column:expires_at;index:idx_expires_at"`
}

func (BulkCode) TableName() string { return "bulk_code" }
