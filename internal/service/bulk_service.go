package service

import (
	"context"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
)

// BulkService 批量兑换码购买接口
type BulkService struct {
	payment *biz.PaymentUsecase
}

// NewBulkService 创建批量购买服务
func NewBulkService(payment *biz.PaymentUsecase) *BulkService {
	return &BulkService{payment: payment}
}

// InitiateBulkRequest 批量下单请求
type InitiateBulkRequest struct {
	Quantity int    `json:"quantity"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Currency string `json:"currency"`
}

// InitiatePurchase 创建批量购买支付会话
func (s *BulkService) InitiatePurchase(ctx context.Context, req *InitiateBulkRequest) (*PaymentSessionReply, error) {
	reply, err := s.payment.InitiateBulkOrder(ctx, &biz.BulkOrderRequest{
		Quantity: req.Quantity,
		Email:    req.Email,
		Phone:    req.Phone,
		Currency: req.Currency,
	})
	if err != nil {
		return nil, err
	}
	return toSessionReply(reply), nil
}

// BulkCodeReply 单个兑换码
type BulkCodeReply struct {
	Code      string `json:"code"`
	IsUsed    bool   `json:"isUsed"`
	ExpiresAt string `json:"expiresAt"`
}

// BulkCodesReply 核账响应, 带整个批次的码
type BulkCodesReply struct {
	ReferenceID string           `json:"referenceNumber"`
	Quantity    int              `json:"quantity"`
	Codes       []*BulkCodeReply `json:"codes"`
}

// VerifyAndGenerate 核账并返回批次兑换码, 可重复调用, 返回同一批码
func (s *BulkService) VerifyAndGenerate(ctx context.Context, req *VerifyPaymentRequest) (*BulkCodesReply, error) {
	codes, err := s.payment.ReconcileBulk(ctx, req.ReferenceID)
	if err != nil {
		return nil, err
	}
	reply := &BulkCodesReply{
		ReferenceID: req.ReferenceID,
		Quantity:    len(codes),
		Codes:       make([]*BulkCodeReply, 0, len(codes)),
	}
	for _, c := range codes {
		reply.Codes = append(reply.Codes, &BulkCodeReply{
			Code:      c.Code,
			IsUsed:    c.IsUsed,
			ExpiresAt: c.ExpiresAt.Format(time.RFC3339),
		})
	}
	return reply, nil
}
