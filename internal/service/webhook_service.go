package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/data/gateway"
	"github.com/PhilatPlay/PinMyPlace/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// WebhookService 网关回调接口
// 回调只是加速核账的提示, 真实状态始终以网关查询为准;
// 签名不合法的请求直接拒绝, 不触发任何状态迁移
type WebhookService struct {
	payment *biz.PaymentUsecase
	conf    *conf.Payment
	log     *log.Helper
}

// NewWebhookService 创建回调服务
func NewWebhookService(payment *biz.PaymentUsecase, c *conf.Bootstrap, logger log.Logger) *WebhookService {
	var payconf *conf.Payment
	if c != nil {
		payconf = c.Payment
	}
	if payconf == nil {
		payconf = &conf.Payment{}
	}
	return &WebhookService{
		payment: payment,
		conf:    payconf,
		log:     log.NewHelper(logger),
	}
}

// WebhookReply 回调响应
type WebhookReply struct {
	Received bool `json:"received"`
}

// xenditEvent Invoice 回调载荷
type xenditEvent struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

// HandleXendit 处理 Xendit Invoice 回调
// external_id 就是我们的引用号
func (s *WebhookService) HandleXendit(ctx context.Context, callbackToken string, body []byte) (*WebhookReply, error) {
	token := ""
	if s.conf.Xendit != nil {
		token = s.conf.Xendit.CallbackToken
	}
	if !gateway.ValidXenditCallback(callbackToken, token) {
		s.log.Warnf("Rejected xendit callback with invalid token")
		return nil, errors.New(errors.ErrCodeWebhookSignatureInvalid, "invalid callback token")
	}

	var event xenditEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Warnf("Failed to decode xendit event: %v", err)
		return &WebhookReply{Received: true}, nil
	}
	paid := event.Status == "PAID" || event.Status == "SETTLED"
	if err := s.payment.HandleGatewayEvent(ctx, event.ExternalID, paid); err != nil {
		return nil, err
	}
	return &WebhookReply{Received: true}, nil
}

// stripeEvent webhook 载荷, 只取会话/意图标识
type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// HandleStripe 处理 Stripe 回调 (Checkout 与 Payment Intents 共用端点)
func (s *WebhookService) HandleStripe(ctx context.Context, signature string, body []byte) (*WebhookReply, error) {
	secret := ""
	if s.conf.Stripe != nil {
		secret = s.conf.Stripe.WebhookSecret
	}
	if !gateway.ValidStripeSignature(body, signature, secret, time.Now()) {
		s.log.Warnf("Rejected stripe webhook with invalid signature")
		return nil, errors.New(errors.ErrCodeWebhookSignatureInvalid, "invalid signature")
	}

	var event stripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Warnf("Failed to decode stripe event: %v", err)
		return &WebhookReply{Received: true}, nil
	}

	paid := event.Type == "checkout.session.completed" || event.Type == "payment_intent.succeeded"
	if err := s.payment.HandleGatewayEvent(ctx, event.Data.Object.ID, paid); err != nil {
		return nil, err
	}
	return &WebhookReply{Received: true}, nil
}
