package data

import (
	"context"
	"errors"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
	"github.com/PhilatPlay/PinMyPlace/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// bulkCodeRepo 兑换码仓库实现
type bulkCodeRepo struct {
	data *Data
	log  *log.Helper
}

// NewBulkCodeRepo 创建兑换码仓库
func NewBulkCodeRepo(data *Data, logger log.Logger) biz.BulkCodeRepo {
	return &bulkCodeRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// InsertCode 插入新码, 主键冲突时返回 biz.ErrCodeTaken
func (r *bulkCodeRepo) InsertCode(ctx context.Context, code *biz.BulkCode) error {
	m := toCodeModel(code)
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrCodeTaken
		}
		r.log.Errorf("Failed to insert code %s: %v", code.Code, err)
		return err
	}
	return nil
}

// GetCode 按码获取, 不存在时返回 (nil, nil)
func (r *bulkCodeRepo) GetCode(ctx context.Context, code string) (*biz.BulkCode, error) {
	var m model.BulkCode
	if err := r.data.DB(ctx).First(&m, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("Failed to get code %s: %v", code, err)
		return nil, err
	}
	return toBizCode(&m), nil
}

// ListCodesByReference 返回某订单名下的全部码, 按购买时间排序
func (r *bulkCodeRepo) ListCodesByReference(ctx context.Context, referenceID string) ([]*biz.BulkCode, error) {
	var ms []model.BulkCode
	if err := r.data.DB(ctx).
		Where("reference_id = ?", referenceID).
		Order("purchased_at, code").
		Find(&ms).Error; err != nil {
		r.log.Errorf("Failed to list codes for %s: %v", referenceID, err)
		return nil, err
	}
	codes := make([]*biz.BulkCode, 0, len(ms))
	for i := range ms {
		codes = append(codes, toBizCode(&ms[i]))
	}
	return codes, nil
}

// MarkUsed CAS 未用 -> 已用, RowsAffected 判定是否抢到
func (r *bulkCodeRepo) MarkUsed(ctx context.Context, code, pinID, phone string) (bool, error) {
	now := time.Now().UTC()
	tx := r.data.DB(ctx).Model(&model.BulkCode{}).
		Where("code = ? AND is_used = ? AND expires_at > ?", code, false, now).
		Updates(map[string]interface{}{
			"is_used":         true,
			"used_at":         now,
			"used_by_phone":   phone,
			"redeemed_pin_id": pinID,
		})
	if tx.Error != nil {
		r.log.Errorf("Failed to mark code %s used: %v", code, tx.Error)
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// PurgeExpired 删除过期早于 cutoff 且从未使用的码
func (r *bulkCodeRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.data.DB(ctx).
		Where("is_used = ? AND expires_at < ?", false, cutoff).
		Delete(&model.BulkCode{})
	if tx.Error != nil {
		r.log.Errorf("Failed to purge expired codes: %v", tx.Error)
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func toCodeModel(c *biz.BulkCode) *model.BulkCode {
	return &model.BulkCode{
		Code:          c.Code,
		PurchaseEmail: c.PurchaseEmail,
		PurchasePhone: c.PurchasePhone,
		UnitPrice:     c.UnitPrice,
		TotalPaid:     c.TotalPaid,
		Currency:      c.Currency,
		ReferenceID:   c.ReferenceID,
		IsUsed:        c.IsUsed,
		UsedAt:        c.UsedAt,
		UsedByPhone:   c.UsedByPhone,
		RedeemedPinID: c.RedeemedPinID,
		PurchasedAt:   c.PurchasedAt,
		ExpiresAt:     c.ExpiresAt,
	}
}

func toBizCode(m *model.BulkCode) *biz.BulkCode {
	return &biz.BulkCode{
		Code:          m.Code,
		PurchaseEmail: m.PurchaseEmail,
		PurchasePhone: m.PurchasePhone,
		UnitPrice:     m.UnitPrice,
		TotalPaid:     m.TotalPaid,
		Currency:      m.Currency,
		ReferenceID:   m.ReferenceID,
		IsUsed:        m.IsUsed,
		UsedAt:        m.UsedAt,
		UsedByPhone:   m.UsedByPhone,
		RedeemedPinID: m.RedeemedPinID,
		PurchasedAt:   m.PurchasedAt,
		ExpiresAt:     m.ExpiresAt,
	}
}
