package biz

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/constants"
)

// ErrCodeTaken 兑换码唯一索引冲突, 调用方换一个新码重试
var ErrCodeTaken = errors.New("bulk code already exists")

// BulkCode 批量购买生成的兑换码, 每个码只能兑换一次
type BulkCode struct {
	Code          string
	PurchaseEmail string
	PurchasePhone string
	UnitPrice     float64
	TotalPaid     float64
	Currency      string
	ReferenceID   string
	IsUsed        bool
	UsedAt        *time.Time
	UsedByPhone   string
	RedeemedPinID string
	PurchasedAt   time.Time
	ExpiresAt     time.Time
}

// IsValid 兑换码是否可用
func (c *BulkCode) IsValid(now time.Time) bool {
	return !c.IsUsed && now.Before(c.ExpiresAt)
}

// BulkCodeRepo 兑换码仓库接口
// 存储层的唯一索引是码唯一性的最终仲裁者;
// MarkUsed 必须是 is_used 上的 compare-and-set
type BulkCodeRepo interface {
	// InsertCode 插入新码, 唯一索引冲突时返回 ErrCodeTaken
	InsertCode(ctx context.Context, code *BulkCode) error
	// GetCode 按码查询, 不存在时返回 (nil, nil)
	GetCode(ctx context.Context, code string) (*BulkCode, error)
	// ListCodesByReference 返回某订单名下的全部码
	ListCodesByReference(ctx context.Context, referenceID string) ([]*BulkCode, error)
	// MarkUsed CAS 未用 -> 已用, 返回是否抢到
	MarkUsed(ctx context.Context, code, pinID, phone string) (bool, error)
	// PurgeExpired 删除过期且早于 cutoff 的未用码
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// GenerateCode 生成一个候选兑换码, 形如 DL-XXXXXXXX
// 字符集去掉了易混淆字符; 唯一性由存储层索引保证, 这里只管随机
func GenerateCode() string {
	var b strings.Builder
	b.WriteString(constants.CodePrefix)
	for i := 0; i < constants.CodeLength; i++ {
		b.WriteByte(constants.CodeCharset[rand.IntN(len(constants.CodeCharset))])
	}
	return b.String()
}
