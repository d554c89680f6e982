package constants

import "time"

// 缓存相关常量
const (
	// PinCacheExpiration pin 公开查询缓存过期时间
	PinCacheExpiration = time.Hour
	// NullCacheExpiration 空值缓存过期时间 (防止缓存穿透)
	NullCacheExpiration = 5 * time.Minute
)

// 订单类型
const (
	// OrderKindSinglePin 单个 pin 购买订单
	OrderKindSinglePin = "single_pin"
	// OrderKindBulkBatch 批量兑换码订单
	OrderKindBulkBatch = "bulk_batch"
)

// 订单状态
// pending 为初始态, verified/failed 为终态, 终态不可回退
const (
	OrderStatusPending  = "pending"
	OrderStatusVerified = "verified"
	OrderStatusFailed   = "failed"
)

// 支付网关标识
const (
	// GatewayXendit 东南亚电子钱包 (托管跳转链接)
	GatewayXendit = "xendit"
	// GatewayStripeCheckout 国际货币 Checkout 跳转
	GatewayStripeCheckout = "stripe_checkout"
	// GatewayStripeIntent 拉美/卡支付 Payment Intents (页内 client token)
	GatewayStripeIntent = "stripe_intent"
)

// Pin 状态
const (
	PinStatusActive   = "active"
	PinStatusInactive = "inactive"
)

// 兑换方式
const (
	RedemptionMethodPayment  = "payment"
	RedemptionMethodBulkCode = "bulk_code"
)

// 默认定价策略 (可被 pricing 配置覆盖)
const (
	// DefaultAgentCommission 每单代理佣金默认值
	DefaultAgentCommission = 25
	// DefaultBulkMinQuantity 批量购买最低数量
	DefaultBulkMinQuantity = 10
	// DefaultBulkDiscountPercent 批量折扣百分比
	DefaultBulkDiscountPercent = 50
	// DefaultCodeValidityDays 兑换码有效期 (自激活时间起算)
	DefaultCodeValidityDays = 180
)

// 兑换码生成
const (
	// CodePrefix 兑换码前缀
	CodePrefix = "DL-"
	// CodeCharset 去掉易混淆字符 (0/O, 1/I) 的字符集
	CodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// CodeLength 前缀后的随机字符数
	CodeLength = 8
	// CodeMaxRetries 唯一性冲突时的重新生成次数上限
	CodeMaxRetries = 5
	// CodeGenConcurrency 批量生成时的并发度
	CodeGenConcurrency = 8
)

// 分布式锁相关常量
const (
	// SweepLockExpiration 订单清扫锁过期时间
	SweepLockExpiration = 10 * time.Minute
	// SweepLockRetries 订单清扫锁重试次数
	SweepLockRetries = 1
)

// 清扫策略
const (
	// FailedOrderRetention 失败订单保留时长, 超过后删除
	FailedOrderRetention = 7 * 24 * time.Hour
	// ExpiredCodeRetention 过期未用兑换码保留时长
	ExpiredCodeRetention = 30 * 24 * time.Hour
)

// AmountTolerance 核账时本地金额与网关金额的允许误差 (主币单位)
const AmountTolerance = 0.01
