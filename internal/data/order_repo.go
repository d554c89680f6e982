package data

import (
	"context"
	"errors"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"
	"github.com/PhilatPlay/PinMyPlace/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// orderRepo 订单仓库实现
type orderRepo struct {
	data *Data
	log  *log.Helper
}

// NewOrderRepo 创建订单仓库
func NewOrderRepo(data *Data, logger log.Logger) biz.OrderRepo {
	return &orderRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreateOrder 创建订单
func (r *orderRepo) CreateOrder(ctx context.Context, order *biz.Order) error {
	m := toOrderModel(order)
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create order %s: %v", order.ReferenceID, err)
		return err
	}
	return nil
}

// GetOrder 按引用号获取订单, 不存在时返回 (nil, nil)
func (r *orderRepo) GetOrder(ctx context.Context, referenceID string) (*biz.Order, error) {
	var m model.PendingOrder
	if err := r.data.DB(ctx).First(&m, "reference_id = ?", referenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("Failed to get order %s: %v", referenceID, err)
		return nil, err
	}
	return toBizOrder(&m), nil
}

// GetOrderByExternalRef 按网关侧标识获取订单, 不存在时返回 (nil, nil)
func (r *orderRepo) GetOrderByExternalRef(ctx context.Context, externalRef string) (*biz.Order, error) {
	var m model.PendingOrder
	if err := r.data.DB(ctx).First(&m, "external_ref = ?", externalRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("Failed to get order by external ref %s: %v", externalRef, err)
		return nil, err
	}
	return toBizOrder(&m), nil
}

// MarkVerified CAS pending -> verified
// WHERE 条件带上当前状态, RowsAffected 判定是否抢到迁移
func (r *orderRepo) MarkVerified(ctx context.Context, referenceID string) (bool, error) {
	return r.casStatus(ctx, referenceID, constants.OrderStatusVerified)
}

// MarkFailed CAS pending -> failed
func (r *orderRepo) MarkFailed(ctx context.Context, referenceID string) (bool, error) {
	return r.casStatus(ctx, referenceID, constants.OrderStatusFailed)
}

func (r *orderRepo) casStatus(ctx context.Context, referenceID, to string) (bool, error) {
	tx := r.data.DB(ctx).Model(&model.PendingOrder{}).
		Where("reference_id = ? AND status = ?", referenceID, constants.OrderStatusPending).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		r.log.Errorf("Failed to mark order %s %s: %v", referenceID, to, tx.Error)
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ExpirePending 批量置超时 pending 订单为 failed
func (r *orderRepo) ExpirePending(ctx context.Context, kind string, cutoff time.Time) (int64, error) {
	tx := r.data.DB(ctx).Model(&model.PendingOrder{}).
		Where("kind = ? AND status = ? AND created_at < ?", kind, constants.OrderStatusPending, cutoff).
		Updates(map[string]interface{}{"status": constants.OrderStatusFailed, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		r.log.Errorf("Failed to expire pending %s orders: %v", kind, tx.Error)
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// PurgeFailed 删除早于 cutoff 的 failed 订单
func (r *orderRepo) PurgeFailed(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.data.DB(ctx).
		Where("status = ? AND created_at < ?", constants.OrderStatusFailed, cutoff).
		Delete(&model.PendingOrder{})
	if tx.Error != nil {
		r.log.Errorf("Failed to purge failed orders: %v", tx.Error)
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func toOrderModel(o *biz.Order) *model.PendingOrder {
	m := &model.PendingOrder{
		ReferenceID: o.ReferenceID,
		Kind:        o.Kind,
		Gateway:     o.Gateway,
		ExternalRef: o.ExternalRef,
		Amount:      o.Amount,
		Currency:    o.Currency,
		Status:      o.Status,
		AgentID:     o.AgentID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.CreatedAt,
	}
	if o.Pin != nil {
		m.LocationName = o.Pin.LocationName
		m.Address = o.Pin.Address
		m.CustomerPhone = o.Pin.CustomerPhone
		m.Latitude = o.Pin.Latitude
		m.Longitude = o.Pin.Longitude
		m.CorrectedLatitude = o.Pin.CorrectedLatitude
		m.CorrectedLongitude = o.Pin.CorrectedLongitude
	}
	if o.Bulk != nil {
		m.Quantity = o.Bulk.Quantity
		m.UnitPrice = o.Bulk.UnitPrice
		m.Email = o.Bulk.Email
		m.Phone = o.Bulk.Phone
	}
	return m
}

func toBizOrder(m *model.PendingOrder) *biz.Order {
	o := &biz.Order{
		ReferenceID: m.ReferenceID,
		Kind:        m.Kind,
		Gateway:     m.Gateway,
		ExternalRef: m.ExternalRef,
		Amount:      m.Amount,
		Currency:    m.Currency,
		Status:      m.Status,
		AgentID:     m.AgentID,
		CreatedAt:   m.CreatedAt,
	}
	switch m.Kind {
	case constants.OrderKindSinglePin:
		o.Pin = &biz.PinPayload{
			LocationName:       m.LocationName,
			Address:            m.Address,
			CustomerPhone:      m.CustomerPhone,
			Latitude:           m.Latitude,
			Longitude:          m.Longitude,
			CorrectedLatitude:  m.CorrectedLatitude,
			CorrectedLongitude: m.CorrectedLongitude,
		}
	case constants.OrderKindBulkBatch:
		o.Bulk = &biz.BulkPayload{
			Quantity:  m.Quantity,
			UnitPrice: m.UnitPrice,
			Email:     m.Email,
			Phone:     m.Phone,
		}
	}
	return o
}
