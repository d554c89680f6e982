package biz

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/constants"
	"github.com/PhilatPlay/PinMyPlace/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// Pin 激活后的地址 pin
// 金额/货币/引用号在创建后不可变
type Pin struct {
	PinID              string
	LocationName       string
	Address            string
	CustomerPhone      string
	Latitude           float64
	Longitude          float64
	CorrectedLatitude  float64
	CorrectedLongitude float64
	CorrectionDistance float64
	Amount             float64
	Currency           string
	ReferenceID        string
	QRCode             string
	GoogleMapsURL      string
	Status             string // active, inactive
	RedemptionMethod   string // payment, bulk_code
	RedeemedCode       string
	AgentID            string
	AccessCount        int64
	LastAccessed       *time.Time
	CreatedAt          time.Time
}

// PinRepo pin 仓库接口
type PinRepo interface {
	// CreatePin 插入新 pin, 引用号唯一索引冲突时返回 ErrPinExists
	CreatePin(ctx context.Context, pin *Pin) error
	// GetPin 按 pinID 查询, 不存在时返回 (nil, nil)
	GetPin(ctx context.Context, pinID string) (*Pin, error)
	// GetPinByReference 按订单引用号查询, 用于幂等恢复
	GetPinByReference(ctx context.Context, referenceID string) (*Pin, error)
	// TouchAccess 原子递增访问计数并刷新最后访问时间
	TouchAccess(ctx context.Context, pinID string) error
}

// CorrectionDistance 原始坐标与用户校正坐标之间的球面距离 (米), haversine
func CorrectionDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371000.0
	p1 := lat1 * math.Pi / 180
	p2 := lat2 * math.Pi / 180
	dp := (lat2 - lat1) * math.Pi / 180
	dl := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dp/2)*math.Sin(dp/2) +
		math.Cos(p1)*math.Cos(p2)*math.Sin(dl/2)*math.Sin(dl/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}

// NewPinID 生成 pin 标识
func NewPinID() string {
	return NewReferenceID("PIN")
}

// NewQRCode 生成二维码标识
func NewQRCode() string {
	return NewReferenceID("QR")
}

// GoogleMapsURL 生成指向校正坐标的地图链接
func GoogleMapsURL(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%.6f,%.6f", lat, lng)
}

// PinUsecase pin 查询业务逻辑
type PinUsecase struct {
	pinRepo PinRepo
	router  *GatewayRouter
	log     *log.Helper
}

// NewPinUsecase 创建 pin 业务逻辑实例
func NewPinUsecase(pinRepo PinRepo, router *GatewayRouter, logger log.Logger) *PinUsecase {
	return &PinUsecase{
		pinRepo: pinRepo,
		router:  router,
		log:     log.NewHelper(logger),
	}
}

// GetPin 公开查询 pin 并记录访问
func (uc *PinUsecase) GetPin(ctx context.Context, pinID string) (*Pin, error) {
	pin, err := uc.pinRepo.GetPin(ctx, pinID)
	if err != nil {
		uc.log.Errorf("Failed to get pin %s: %v", pinID, err)
		return nil, err
	}
	if pin == nil || pin.Status != constants.PinStatusActive {
		return nil, errors.New(errors.ErrCodePinNotFound, "pin not found or inactive")
	}

	if err := uc.pinRepo.TouchAccess(ctx, pinID); err != nil {
		// 计数失败不影响查询
		uc.log.Warnf("Failed to touch access for pin %s: %v", pinID, err)
	}
	pin.AccessCount++
	return pin, nil
}

// DetectCurrency 根据国家代码推断展示货币
func (uc *PinUsecase) DetectCurrency(ctx context.Context, countryCode string) Currency {
	return GetCurrencyByCountry(countryCode, uc.router.DefaultCurrency())
}
