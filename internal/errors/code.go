package errors

import (
	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// pin 服务错误码定义
// 错误码格式：SSMMEE (6位数字)，其中 SS=14 表示 pin-service
// 模块划分：
//   01: 校验模块
//   02: 支付网关模块
//   03: 订单模块
//   04: pin 模块
//   05: 兑换码模块
//   06: 代理模块

// 校验模块 (140100-140199)
const (
	// ErrCodeValidationFailed 请求参数校验失败
	ErrCodeValidationFailed = 140101
)

// 支付网关模块 (140200-140299)
const (
	// ErrCodeGatewayCreateFailed 创建支付会话失败 (未持久化订单)
	ErrCodeGatewayCreateFailed = 140201
	// ErrCodeVerifyIndeterminate 网关核账结果不确定 (网络/超时), 订单保持 pending, 可重试
	ErrCodeVerifyIndeterminate = 140202
	// ErrCodePaymentNotConfirmed 网关明确返回未支付
	ErrCodePaymentNotConfirmed = 140203
	// ErrCodeWebhookSignatureInvalid webhook 签名校验失败
	ErrCodeWebhookSignatureInvalid = 140204
)

// 订单模块 (140300-140399)
const (
	// ErrCodeOrderNotFound 订单不存在或已被清理
	ErrCodeOrderNotFound = 140301
	// ErrCodeOrderExpired 订单超过 TTL 仍未支付, 需要重新下单
	ErrCodeOrderExpired = 140302
	// ErrCodeOrderCreateFailed 订单创建失败
	ErrCodeOrderCreateFailed = 140303
	// ErrCodeAmountMismatch 网关金额与订单金额超出容差
	ErrCodeAmountMismatch = 140304
)

// pin 模块 (140400-140499)
const (
	// ErrCodePinNotFound pin 不存在或未激活
	ErrCodePinNotFound = 140401
	// ErrCodePinCreateFailed pin 创建失败
	ErrCodePinCreateFailed = 140402
)

// 兑换码模块 (140500-140599)
const (
	// ErrCodeBulkCodeInvalid 兑换码不存在
	ErrCodeBulkCodeInvalid = 140501
	// ErrCodeBulkCodeUsed 兑换码已被使用
	ErrCodeBulkCodeUsed = 140502
	// ErrCodeBulkCodeExpired 兑换码已过期
	ErrCodeBulkCodeExpired = 140503
	// ErrCodeBulkCodeGenerateFailed 兑换码生成失败
	ErrCodeBulkCodeGenerateFailed = 140504
)

// 代理模块 (140600-140699)
const (
	// ErrCodeAgentNotFound 代理不存在
	ErrCodeAgentNotFound = 140601
)

// reasons 错误码到稳定 reason 的映射, reason 供调用方做程序化判断
var reasons = map[int]string{
	ErrCodeValidationFailed:        "VALIDATION_FAILED",
	ErrCodeGatewayCreateFailed:     "GATEWAY_CREATE_FAILED",
	ErrCodeVerifyIndeterminate:     "VERIFY_INDETERMINATE",
	ErrCodePaymentNotConfirmed:     "PAYMENT_NOT_CONFIRMED",
	ErrCodeWebhookSignatureInvalid: "WEBHOOK_SIGNATURE_INVALID",
	ErrCodeOrderNotFound:           "ORDER_NOT_FOUND",
	ErrCodeOrderExpired:            "ORDER_EXPIRED",
	ErrCodeOrderCreateFailed:       "ORDER_CREATE_FAILED",
	ErrCodeAmountMismatch:          "AMOUNT_MISMATCH",
	ErrCodePinNotFound:             "PIN_NOT_FOUND",
	ErrCodePinCreateFailed:         "PIN_CREATE_FAILED",
	ErrCodeBulkCodeInvalid:         "BULK_CODE_INVALID",
	ErrCodeBulkCodeUsed:            "BULK_CODE_USED",
	ErrCodeBulkCodeExpired:         "BULK_CODE_EXPIRED",
	ErrCodeBulkCodeGenerateFailed:  "BULK_CODE_GENERATE_FAILED",
	ErrCodeAgentNotFound:           "AGENT_NOT_FOUND",
}

// New 按错误码构造业务错误
func New(code int, message string) *kerrors.Error {
	reason, ok := reasons[code]
	if !ok {
		reason = "UNKNOWN"
	}
	return kerrors.New(code, reason, message)
}

// Is 判断 err 是否为指定错误码的业务错误
func Is(err error, code int) bool {
	se := kerrors.FromError(err)
	return se != nil && int(se.Code) == code
}

// Reason 返回错误码对应的 reason
func Reason(code int) string {
	if r, ok := reasons[code]; ok {
		return r
	}
	return "UNKNOWN"
}
