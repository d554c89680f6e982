package biz

import (
	"context"
	"time"
)

// Agent 代理 (线下推销员) 账户
// 核心流程只关心佣金入账字段; 登录/结算由外部系统负责
type Agent struct {
	AgentID           string
	Name              string
	Email             string
	Phone             string
	IsActive          bool
	TotalPinsSold     int64
	TotalEarnings     float64
	PendingCommission float64
	PaidCommission    float64
	CreatedAt         time.Time
}

// AgentRepo 代理仓库接口
// CreditSale 必须是原子自增 (单条 UPDATE 表达式), 不允许读改写,
// 同一代理并发售卖时佣金不能少记; 本核心从不减少佣金, 结算在外部
type AgentRepo interface {
	// GetAgent 按 agentID 查询, 不存在时返回 (nil, nil)
	GetAgent(ctx context.Context, agentID string) (*Agent, error)
	// CreditSale 售出一单: 销量 +1, 收入与待结佣金各 +commission
	// agentID 不存在时静默跳过 (返回 nil), 不阻塞 pin 激活
	CreditSale(ctx context.Context, agentID string, commission float64) error
}
