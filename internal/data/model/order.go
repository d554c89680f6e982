package model

import "time"

// PendingOrder 待支付订单模型
// 单 pin 与批量订单共用一张表, 激活载荷按 kind 取对应列
type PendingOrder struct {
	ReferenceID string  `gorm:"primaryKey;column:reference_id"`
	Kind        string  `gorm:"column:kind;index:idx_kind_status"`
	Gateway     string  `gorm:"column:gateway"`
	ExternalRef string  `gorm:"column:external_ref;index:idx_external_ref"`
	Amount      float64 `gorm:"column:amount"`
	Currency    string  `gorm:"column:currency"`
	Status      string  `gorm:"column:status;index:idx_kind_status"`
	AgentID     string  `gorm:"column:agent_id"`

	// single_pin 载荷
	LocationName       string  `gorm:"column:location_name"`
	Address            string  `gorm:"column:address"`
	CustomerPhone      string  `gorm:"column:customer_phone"`
	Latitude           float64 `gorm:"column:latitude"`
	Longitude          float64 `gorm:"column:longitude"`
	CorrectedLatitude  float64 `gorm:"column:corrected_latitude"`
	CorrectedLongitude float64 `gorm:"column:corrected_longitude"`

	// bulk_batch 载荷
	Quantity  int     `gorm:"column:quantity"`
	UnitPrice float64 `gorm:"column:unit_price"`
	Email     string  `gorm:"column:email"`
	Phone     string  `gorm:"column:phone"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (PendingOrder) TableName() string { return "pending_order" }
