package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order 待支付订单, "客户是否已付款" 的唯一事实来源
// Pin/兑换码的存在与激活状态必须能从订单终态推导出来,
// 崩溃后重跑核账要能恢复, 不能重复扣款或重复发码
type Order struct {
	ReferenceID string
	Kind        string // single_pin, bulk_batch
	Gateway     string // 创建时记录, 之后不变, 用于核账路由
	ExternalRef string // 网关侧会话/发票标识
	Amount      float64
	Currency    string
	Status      string // pending, verified, failed
	AgentID     string
	Pin         *PinPayload
	Bulk        *BulkPayload
	CreatedAt   time.Time
}

// PinPayload 单 pin 订单在支付完成后激活所需的数据
type PinPayload struct {
	LocationName       string
	Address            string
	CustomerPhone      string
	Latitude           float64
	Longitude          float64
	CorrectedLatitude  float64
	CorrectedLongitude float64
}

// BulkPayload 批量订单在支付完成后发码所需的数据
type BulkPayload struct {
	Quantity  int
	UnitPrice float64
	Email     string
	Phone     string
}

// OrderRepo 订单仓库接口
// MarkVerified/MarkFailed 必须是状态上的 compare-and-set:
// 只有从 pending 出发的更新才生效, 返回是否抢到了这次迁移
type OrderRepo interface {
	CreateOrder(ctx context.Context, order *Order) error
	// GetOrder 按 referenceID 查询, 不存在时返回 (nil, nil)
	GetOrder(ctx context.Context, referenceID string) (*Order, error)
	// GetOrderByExternalRef 按网关侧标识查询, 不存在时返回 (nil, nil)
	GetOrderByExternalRef(ctx context.Context, externalRef string) (*Order, error)
	// MarkVerified CAS pending -> verified
	MarkVerified(ctx context.Context, referenceID string) (bool, error)
	// MarkFailed CAS pending -> failed
	MarkFailed(ctx context.Context, referenceID string) (bool, error)
	// ExpirePending 将某类下早于 cutoff 的 pending 订单批量置为 failed
	ExpirePending(ctx context.Context, kind string, cutoff time.Time) (int64, error)
	// PurgeFailed 删除早于 cutoff 的 failed 订单
	PurgeFailed(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewReferenceID 生成跨网关全局唯一的订单引用号
// 形如 PIN-1736899200123-D4E19F / BULK-1736899200123-8C02AB
func NewReferenceID(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}
