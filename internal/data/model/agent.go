package model

import "time"

// Agent 代理模型
type Agent struct {
	AgentID           string    `gorm:"primaryKey;column:agent_id"`
	Name              string    `gorm:"column:name"`
	Email             string    `gorm:"column:email"`
	Phone             string    `gorm:"column:phone"`
	IsActive          bool      `gorm:"column:is_active"`
	TotalPinsSold     int64     `gorm:"column:total_pins_sold"`
	TotalEarnings     float64   `gorm:"column:total_earnings"`
	PendingCommission float64   `gorm:"column:pending_commission"`
	PaidCommission    float64   `gorm:"column:paid_commission"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (Agent) TableName() string { return "agent" }
