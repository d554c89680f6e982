package model

import "time"

// Pin 地址 pin 模型
type Pin struct {
	PinID              string     `gorm:"primaryKey;column:pin_id"`
	LocationName       string     `gorm:"column:location_name"`
	Address            string     `gorm:"column:address"`
	CustomerPhone      string     `gorm:"column:customer_phone"`
	Latitude           float64    `gorm:"column:latitude"`
	Longitude          float64    `gorm:"column:longitude"`
	CorrectedLatitude  float64    `gorm:"column:corrected_latitude"`
	CorrectedLongitude float64    `gorm:"column:corrected_longitude"`
	CorrectionDistance float64    `gorm:"column:correction_distance"`
	Amount             float64    `gorm:"column:amount"`
	Currency           string     `gorm:"column:currency"`
	ReferenceID        string     `gorm:"column:reference_id;uniqueIndex:uk_reference_id"`
	QRCode             string     `gorm:"column:qr_code"`
	GoogleMapsURL      string     `gorm:"column:google_maps_url"`
	Status             string     `gorm:"column:status"`
	RedemptionMethod   string     `gorm:"column:redemption_method"`
	RedeemedCode       string     `gorm:"column:redeemed_code"`
	AgentID            string     `gorm:"column:agent_id;index:idx_agent_id"`
	AccessCount        int64      `gorm:"column:access_count"`
	LastAccessed       *time.Time `gorm:"column:last_accessed"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
}

func (Pin) TableName() string { return "pin" }
