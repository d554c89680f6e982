package biz

import (
	"context"
	"errors"
)

// ErrVerifyIndeterminate 网关核账结果不确定 (网络错误/超时)
// 既不能当作已支付, 也不能当作失败; 订单保持 pending, 调用方稍后重试
var ErrVerifyIndeterminate = errors.New("gateway verification indeterminate")

// CreateRequest 创建支付会话的参数
type CreateRequest struct {
	ReferenceID   string
	Amount        float64
	Currency      string
	Description   string
	CustomerEmail string
	CustomerPhone string
	Metadata      map[string]string
}

// Session 网关创建的支付会话
// RedirectURL 与 ClientToken 二选一: 托管跳转型网关返回前者,
// 页内卡输入型网关返回后者; 核账引擎不区分两者
type Session struct {
	ExternalRef string
	RedirectURL string
	ClientToken string
}

// VerifyResult 网关核账结果
// 未支付是正常结果而不是错误; 网络类故障统一返回 ErrVerifyIndeterminate
type VerifyResult struct {
	Paid      bool
	RawStatus string
	Amount    float64
	Currency  string
}

// Gateway 支付网关统一契约 (防腐层)
// 新接网关实现该接口并加入路由表即可, 核账引擎不感知具体厂商
type Gateway interface {
	Name() string
	Create(ctx context.Context, req *CreateRequest) (*Session, error)
	Verify(ctx context.Context, externalRef string) (*VerifyResult, error)
}

// Gateways 网关标识到实现的注册表, 由 data 层装配
type Gateways map[string]Gateway
