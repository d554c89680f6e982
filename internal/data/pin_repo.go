package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"
	"github.com/PhilatPlay/PinMyPlace/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// pinRepo pin 仓库实现
// 公开查询走 cache-aside, 不存在的 pinID 缓存空值挡穿透
type pinRepo struct {
	data *Data
	log  *log.Helper
}

// NewPinRepo 创建 pin 仓库
func NewPinRepo(data *Data, logger log.Logger) biz.PinRepo {
	return &pinRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func pinCacheKey(pinID string) string {
	return fmt.Sprintf("pin:%s", pinID)
}

// CreatePin 创建 pin, 引用号唯一索引冲突时返回 biz.ErrPinExists
func (r *pinRepo) CreatePin(ctx context.Context, pin *biz.Pin) error {
	m := toPinModel(pin)
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrPinExists
		}
		r.log.Errorf("Failed to create pin %s: %v", pin.PinID, err)
		return err
	}
	// 覆盖可能存在的空值缓存
	r.invalidate(ctx, pin.PinID)
	return nil
}

// GetPin 按 pinID 获取, 不存在时返回 (nil, nil)
func (r *pinRepo) GetPin(ctx context.Context, pinID string) (*biz.Pin, error) {
	key := pinCacheKey(pinID)
	if cached, err := r.data.rdb.Get(ctx, key).Result(); err == nil {
		if cached == "" {
			return nil, nil
		}
		var pin biz.Pin
		if err := json.Unmarshal([]byte(cached), &pin); err == nil {
			return &pin, nil
		}
		// 缓存内容损坏, 回源并覆盖
	} else if err != redis.Nil {
		r.log.Warnf("Failed to read pin cache %s: %v", pinID, err)
	}

	var m model.Pin
	if err := r.data.DB(ctx).First(&m, "pin_id = ?", pinID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.data.rdb.Set(ctx, key, "", constants.NullCacheExpiration)
			return nil, nil
		}
		r.log.Errorf("Failed to get pin %s: %v", pinID, err)
		return nil, err
	}

	pin := toBizPin(&m)
	if payload, err := json.Marshal(pin); err == nil {
		r.data.rdb.Set(ctx, key, payload, constants.PinCacheExpiration)
	}
	return pin, nil
}

// GetPinByReference 按订单引用号获取, 不存在时返回 (nil, nil)
// 核账路径直读数据库, 不经过缓存
func (r *pinRepo) GetPinByReference(ctx context.Context, referenceID string) (*biz.Pin, error) {
	var m model.Pin
	if err := r.data.DB(ctx).First(&m, "reference_id = ?", referenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("Failed to get pin by reference %s: %v", referenceID, err)
		return nil, err
	}
	return toBizPin(&m), nil
}

// TouchAccess 原子递增访问计数并刷新最后访问时间
// 不动缓存: 公开查询每次都会计数, 访问后失效等于没有缓存,
// 缓存副本里略旧的 access_count 等过期自然刷新
func (r *pinRepo) TouchAccess(ctx context.Context, pinID string) error {
	now := time.Now().UTC()
	tx := r.data.DB(ctx).Model(&model.Pin{}).
		Where("pin_id = ?", pinID).
		Updates(map[string]interface{}{
			"access_count":  gorm.Expr("access_count + 1"),
			"last_accessed": now,
		})
	return tx.Error
}

func (r *pinRepo) invalidate(ctx context.Context, pinID string) {
	if err := r.data.rdb.Del(ctx, pinCacheKey(pinID)).Err(); err != nil {
		r.log.Warnf("Failed to invalidate pin cache %s: %v", pinID, err)
	}
}

func toPinModel(p *biz.Pin) *model.Pin {
	return &model.Pin{
		PinID:              p.PinID,
		LocationName:       p.LocationName,
		Address:            p.Address,
		CustomerPhone:      p.CustomerPhone,
		Latitude:           p.Latitude,
		Longitude:          p.Longitude,
		CorrectedLatitude:  p.CorrectedLatitude,
		CorrectedLongitude: p.CorrectedLongitude,
		CorrectionDistance: p.CorrectionDistance,
		Amount:             p.Amount,
		Currency:           p.Currency,
		ReferenceID:        p.ReferenceID,
		QRCode:             p.QRCode,
		GoogleMapsURL:      p.GoogleMapsURL,
		Status:             p.Status,
		RedemptionMethod:   p.RedemptionMethod,
		RedeemedCode:       p.RedeemedCode,
		AgentID:            p.AgentID,
		AccessCount:        p.AccessCount,
		LastAccessed:       p.LastAccessed,
		CreatedAt:          p.CreatedAt,
	}
}

func toBizPin(m *model.Pin) *biz.Pin {
	return &biz.Pin{
		PinID:              m.PinID,
		LocationName:       m.LocationName,
		Address:            m.Address,
		CustomerPhone:      m.CustomerPhone,
		Latitude:           m.Latitude,
		Longitude:          m.Longitude,
		CorrectedLatitude:  m.CorrectedLatitude,
		CorrectedLongitude: m.CorrectedLongitude,
		CorrectionDistance: m.CorrectionDistance,
		Amount:             m.Amount,
		Currency:           m.Currency,
		ReferenceID:        m.ReferenceID,
		QRCode:             m.QRCode,
		GoogleMapsURL:      m.GoogleMapsURL,
		Status:             m.Status,
		RedemptionMethod:   m.RedemptionMethod,
		RedeemedCode:       m.RedeemedCode,
		AgentID:            m.AgentID,
		AccessCount:        m.AccessCount,
		LastAccessed:       m.LastAccessed,
		CreatedAt:          m.CreatedAt,
	}
}
