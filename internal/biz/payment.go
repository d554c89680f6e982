package biz

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/auth"
	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"
	"github.com/PhilatPlay/PinMyPlace/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// Transaction 事务执行接口, 由 data 层实现
type Transaction interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}

// PinOrderRequest 单 pin 下单参数
type PinOrderRequest struct {
	LocationName       string
	Address            string
	CustomerPhone      string
	Latitude           float64
	Longitude          float64
	CorrectedLatitude  float64
	CorrectedLongitude float64
	Currency           string
	AgentID            string
}

// BulkOrderRequest 批量下单参数
type BulkOrderRequest struct {
	Quantity int
	Email    string
	Phone    string
	Currency string
}

// InitiateReply 下单结果: 引用号加上网关会话
type InitiateReply struct {
	ReferenceID string
	Gateway     string
	RedirectURL string
	ClientToken string
	Amount      float64
	Currency    Currency
	ExpiresIn   int64 // 秒
}

// RedeemRequest 用兑换码创建 pin 的参数
type RedeemRequest struct {
	Code               string
	LocationName       string
	Address            string
	CustomerPhone      string
	Latitude           float64
	Longitude          float64
	CorrectedLatitude  float64
	CorrectedLongitude float64
}

// PaymentUsecase 支付编排与核账业务逻辑
type PaymentUsecase struct {
	router    *GatewayRouter
	gateways  Gateways
	orderRepo OrderRepo
	pinRepo   PinRepo
	codeRepo  BulkCodeRepo
	agentRepo AgentRepo
	tm        Transaction
	pricing   *conf.Pricing
	log       *log.Helper
}

// NewPaymentUsecase 创建支付业务逻辑实例
func NewPaymentUsecase(
	router *GatewayRouter,
	gateways Gateways,
	orderRepo OrderRepo,
	pinRepo PinRepo,
	codeRepo BulkCodeRepo,
	agentRepo AgentRepo,
	tm Transaction,
	c *conf.Bootstrap,
	logger log.Logger,
) *PaymentUsecase {
	var pricing *conf.Pricing
	if c != nil {
		pricing = c.Pricing
	}
	return &PaymentUsecase{
		router:    router,
		gateways:  gateways,
		orderRepo: orderRepo,
		pinRepo:   pinRepo,
		codeRepo:  codeRepo,
		agentRepo: agentRepo,
		tm:        tm,
		pricing:   pricing,
		log:       log.NewHelper(logger),
	}
}

// InitiatePinOrder 创建单 pin 订单
// 先在网关创建支付会话, 成功后才落本地 pending 订单;
// 会话创建失败时不留下任何 pending 记录, 客户端换新引用号重试
func (uc *PaymentUsecase) InitiatePinOrder(ctx context.Context, req *PinOrderRequest) (*InitiateReply, error) {
	if err := uc.validatePinRequest(req); err != nil {
		return nil, err
	}

	sel := uc.router.SelectGateway(req.Currency)
	gw, ok := uc.gateways[sel.Gateway]
	if !ok {
		uc.log.Errorf("Gateway %s not registered for currency %s", sel.Gateway, sel.Currency.Code)
		return nil, errors.New(errors.ErrCodeGatewayCreateFailed, "payment gateway unavailable")
	}

	// 佣金记账对象以认证身份为准, 请求体里的 agentId 只是兜底,
	// 防止把销售记到别人名下
	agentID := req.AgentID
	if id, ok := auth.GetAgentIDFromContext(ctx); ok {
		agentID = id
	}

	referenceID := NewReferenceID("PIN")
	phone := CleanPhone(req.CustomerPhone)
	session, err := gw.Create(ctx, &CreateRequest{
		ReferenceID:   referenceID,
		Amount:        sel.Amount,
		Currency:      sel.Currency.Code,
		Description:   fmt.Sprintf("PinMyPlace - GPS Pin for %s", req.LocationName),
		CustomerPhone: phone,
		Metadata: map[string]string{
			"type":            "single_pin",
			"referenceNumber": referenceID,
			"locationName":    req.LocationName,
		},
	})
	if err != nil {
		uc.log.Errorf("Failed to create %s payment session: %v", sel.Gateway, err)
		return nil, errors.New(errors.ErrCodeGatewayCreateFailed, "failed to create payment")
	}

	ttl := uc.pricing.PinOrderTTLDuration()
	order := &Order{
		ReferenceID: referenceID,
		Kind:        constants.OrderKindSinglePin,
		Gateway:     sel.Gateway,
		ExternalRef: session.ExternalRef,
		Amount:      sel.Amount,
		Currency:    sel.Currency.Code,
		Status:      constants.OrderStatusPending,
		AgentID:     agentID,
		Pin: &PinPayload{
			LocationName:       req.LocationName,
			Address:            req.Address,
			CustomerPhone:      phone,
			Latitude:           req.Latitude,
			Longitude:          req.Longitude,
			CorrectedLatitude:  req.CorrectedLatitude,
			CorrectedLongitude: req.CorrectedLongitude,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.orderRepo.CreateOrder(ctx, order); err != nil {
		uc.log.Errorf("Failed to create order %s: %v", referenceID, err)
		return nil, errors.New(errors.ErrCodeOrderCreateFailed, "failed to create order")
	}
	uc.log.Infof("Created pin order %s via %s: %.2f %s", referenceID, sel.Gateway, sel.Amount, sel.Currency.Code)

	return &InitiateReply{
		ReferenceID: referenceID,
		Gateway:     sel.Gateway,
		RedirectURL: session.RedirectURL,
		ClientToken: session.ClientToken,
		Amount:      sel.Amount,
		Currency:    sel.Currency,
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

// InitiateBulkOrder 创建批量兑换码订单
func (uc *PaymentUsecase) InitiateBulkOrder(ctx context.Context, req *BulkOrderRequest) (*InitiateReply, error) {
	if err := uc.validateBulkRequest(req); err != nil {
		return nil, err
	}

	unitPrice := uc.router.BulkUnitPrice(req.Quantity, req.Currency)
	if unitPrice <= 0 {
		return nil, errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("minimum bulk purchase is %d codes", uc.bulkMinQuantity()))
	}
	totalAmount := unitPrice * float64(req.Quantity)

	sel := uc.router.SelectGateway(req.Currency)
	gw, ok := uc.gateways[sel.Gateway]
	if !ok {
		uc.log.Errorf("Gateway %s not registered for currency %s", sel.Gateway, sel.Currency.Code)
		return nil, errors.New(errors.ErrCodeGatewayCreateFailed, "payment gateway unavailable")
	}

	referenceID := NewReferenceID("BULK")
	phone := CleanPhone(req.Phone)
	session, err := gw.Create(ctx, &CreateRequest{
		ReferenceID:   referenceID,
		Amount:        totalAmount,
		Currency:      sel.Currency.Code,
		Description:   fmt.Sprintf("Bulk Purchase - %d PinMyPlace Pin Codes", req.Quantity),
		CustomerEmail: req.Email,
		CustomerPhone: phone,
		Metadata: map[string]string{
			"type":            "bulk_purchase",
			"referenceNumber": referenceID,
			"quantity":        fmt.Sprintf("%d", req.Quantity),
		},
	})
	if err != nil {
		uc.log.Errorf("Failed to create %s payment session: %v", sel.Gateway, err)
		return nil, errors.New(errors.ErrCodeGatewayCreateFailed, "failed to create payment")
	}

	ttl := uc.pricing.BulkOrderTTLDuration()
	order := &Order{
		ReferenceID: referenceID,
		Kind:        constants.OrderKindBulkBatch,
		Gateway:     sel.Gateway,
		ExternalRef: session.ExternalRef,
		Amount:      totalAmount,
		Currency:    sel.Currency.Code,
		Status:      constants.OrderStatusPending,
		Bulk: &BulkPayload{
			Quantity:  req.Quantity,
			UnitPrice: unitPrice,
			Email:     req.Email,
			Phone:     phone,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.orderRepo.CreateOrder(ctx, order); err != nil {
		uc.log.Errorf("Failed to create order %s: %v", referenceID, err)
		return nil, errors.New(errors.ErrCodeOrderCreateFailed, "failed to create order")
	}
	uc.log.Infof("Created bulk order %s via %s: %d codes x %.2f %s", referenceID, sel.Gateway, req.Quantity, unitPrice, sel.Currency.Code)

	return &InitiateReply{
		ReferenceID: referenceID,
		Gateway:     sel.Gateway,
		RedirectURL: session.RedirectURL,
		ClientToken: session.ClientToken,
		Amount:      totalAmount,
		Currency:    sel.Currency,
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

// ReconcilePin 核账并返回激活的 pin
// 对已 verified 的订单重复调用是无操作, 返回同一个 pin
func (uc *PaymentUsecase) ReconcilePin(ctx context.Context, referenceID string) (*Pin, error) {
	order, err := uc.reconcile(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	if order.Kind != constants.OrderKindSinglePin {
		return nil, errors.New(errors.ErrCodeOrderNotFound, "order is not a pin order")
	}
	pin, err := uc.pinRepo.GetPinByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	if pin == nil {
		// activate 与 CAS 同事务提交, 走到这里说明存储异常
		return nil, errors.New(errors.ErrCodePinCreateFailed, "pin activation incomplete")
	}
	return pin, nil
}

// ReconcileBulk 核账并返回生成的兑换码批次
func (uc *PaymentUsecase) ReconcileBulk(ctx context.Context, referenceID string) ([]*BulkCode, error) {
	order, err := uc.reconcile(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	if order.Kind != constants.OrderKindBulkBatch {
		return nil, errors.New(errors.ErrCodeOrderNotFound, "order is not a bulk order")
	}
	return uc.codeRepo.ListCodesByReference(ctx, referenceID)
}

// reconcile 核账引擎
// 所有调用路径 (客户端轮询 / webhook / 管理端重试) 共用这一个状态迁移,
// 幂等性由订单状态上的 CAS 保证, 不在各入口重复实现存在性检查
func (uc *PaymentUsecase) reconcile(ctx context.Context, referenceID string) (*Order, error) {
	order, err := uc.orderRepo.GetOrder(ctx, referenceID)
	if err != nil {
		uc.log.Errorf("Failed to get order %s: %v", referenceID, err)
		return nil, err
	}
	if order == nil {
		return nil, errors.New(errors.ErrCodeOrderNotFound, "order not found")
	}

	switch order.Status {
	case constants.OrderStatusVerified:
		// 终态重入: 补齐可能缺失的产物后原样返回
		if err := uc.tm.Exec(ctx, func(ctx context.Context) error {
			return uc.activate(ctx, order, nil)
		}); err != nil {
			return nil, err
		}
		return order, nil
	case constants.OrderStatusFailed:
		return nil, errors.New(errors.ErrCodeOrderExpired, "order expired, create a new order")
	}

	// pending: 先查 TTL
	if time.Since(order.CreatedAt) > uc.ttlFor(order.Kind) {
		if ok, err := uc.orderRepo.MarkFailed(ctx, referenceID); err != nil {
			return nil, err
		} else if ok {
			uc.log.Infof("Order %s expired after TTL, marked failed", referenceID)
		}
		return nil, errors.New(errors.ErrCodeOrderExpired, "order expired, create a new order")
	}

	gw, ok := uc.gateways[order.Gateway]
	if !ok {
		uc.log.Errorf("Order %s references unknown gateway %s", referenceID, order.Gateway)
		return nil, errors.New(errors.ErrCodeVerifyIndeterminate, "payment verification unavailable, retry shortly")
	}

	// 支付状态在网关侧是最终一致的, 每次核账都重新查询, 绝不缓存
	result, err := gw.Verify(ctx, order.ExternalRef)
	if err != nil {
		// 不确定不等于失败: 订单保持 pending, 允许重试
		uc.log.Warnf("Verification indeterminate for order %s via %s: %v", referenceID, order.Gateway, err)
		return nil, errors.New(errors.ErrCodeVerifyIndeterminate, "payment verification unavailable, retry shortly")
	}
	if !result.Paid {
		uc.log.Infof("Order %s not paid yet (gateway status %q)", referenceID, result.RawStatus)
		return nil, errors.New(errors.ErrCodePaymentNotConfirmed, "payment not confirmed yet, complete the payment and try again")
	}
	if result.Amount > 0 && math.Abs(result.Amount-order.Amount) > constants.AmountTolerance {
		uc.log.Warnf("Amount mismatch for order %s: quoted %.2f %s, gateway reports %.2f %s",
			referenceID, order.Amount, order.Currency, result.Amount, result.Currency)
		return nil, errors.New(errors.ErrCodeAmountMismatch, "payment amount mismatch, contact support with your reference")
	}

	// 产物创建与状态翻转在同一事务内: CAS 没抢到就回滚本次创建,
	// 并发核账下只有赢家执行激活, 输家随后读到终态拿到同一份产物
	candidates := uc.pregenerateCodes(ctx, order)
	err = uc.tm.Exec(ctx, func(ctx context.Context) error {
		if err := uc.activate(ctx, order, candidates); err != nil {
			return err
		}
		won, err := uc.orderRepo.MarkVerified(ctx, order.ReferenceID)
		if err != nil {
			return err
		}
		if !won {
			return errLostRace
		}
		return nil
	})
	if err == errLostRace {
		// 另一个调用方赢了 CAS, 产物已由赢家创建
		uc.log.Infof("Order %s already verified by a concurrent caller", referenceID)
	} else if err != nil {
		uc.log.Errorf("Failed to activate order %s: %v", referenceID, err)
		// 事务回滚, 订单保持 pending, 可重试
		return nil, err
	} else {
		uc.log.Infof("Order %s verified and activated", referenceID)
	}
	order.Status = constants.OrderStatusVerified
	return order, nil
}

// HandleGatewayEvent webhook 入口: 归一化为 {externalRef, paid} 后走同一核账引擎
// 未支付事件不做任何迁移 (pending -> failed 只由 TTL 清扫触发)
func (uc *PaymentUsecase) HandleGatewayEvent(ctx context.Context, externalRef string, paid bool) error {
	if !paid {
		uc.log.Infof("Ignoring non-paid gateway event for %s", externalRef)
		return nil
	}

	// Xendit 回调携带我们的引用号, Stripe 回调携带网关侧会话标识
	order, err := uc.orderRepo.GetOrder(ctx, externalRef)
	if err != nil {
		return err
	}
	if order == nil {
		order, err = uc.orderRepo.GetOrderByExternalRef(ctx, externalRef)
		if err != nil {
			return err
		}
	}
	if order == nil {
		uc.log.Warnf("Gateway event for unknown reference %s", externalRef)
		return nil
	}

	_, err = uc.reconcile(ctx, order.ReferenceID)
	if err != nil {
		if errors.Is(err, errors.ErrCodeVerifyIndeterminate) {
			// 返回错误让网关按自己的节奏重发
			return err
		}
		// 其余业务结果 (未支付/过期) 对 webhook 而言不是错误
		uc.log.Infof("Gateway event for %s resolved without activation: %v", order.ReferenceID, err)
	}
	return nil
}

// ValidateCode 检查兑换码可用性 (创建 pin 之前的预检)
func (uc *PaymentUsecase) ValidateCode(ctx context.Context, code string) (*BulkCode, error) {
	bc, err := uc.codeRepo.GetCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if bc == nil {
		return nil, errors.New(errors.ErrCodeBulkCodeInvalid, "invalid code")
	}
	if bc.IsUsed {
		return nil, errors.New(errors.ErrCodeBulkCodeUsed, "code already used")
	}
	if time.Now().After(bc.ExpiresAt) {
		return nil, errors.New(errors.ErrCodeBulkCodeExpired, "code expired")
	}
	return bc, nil
}

// RedeemCode 用兑换码创建 pin
// is_used 上的 CAS 保证每个码至多兑换一次; 码的占用与 pin 创建同事务
func (uc *PaymentUsecase) RedeemCode(ctx context.Context, req *RedeemRequest) (*Pin, error) {
	if req.LocationName == "" || !ValidPhone(req.CustomerPhone) ||
		!ValidCoordinate(req.Latitude, req.Longitude) ||
		!ValidCoordinate(req.CorrectedLatitude, req.CorrectedLongitude) {
		return nil, errors.New(errors.ErrCodeValidationFailed, "missing or invalid fields")
	}

	code := normalizeCode(req.Code)
	bc, err := uc.ValidateCode(ctx, code)
	if err != nil {
		return nil, err
	}

	phone := CleanPhone(req.CustomerPhone)
	pin := &Pin{
		PinID:              NewPinID(),
		LocationName:       req.LocationName,
		Address:            req.Address,
		CustomerPhone:      phone,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		CorrectedLatitude:  req.CorrectedLatitude,
		CorrectedLongitude: req.CorrectedLongitude,
		CorrectionDistance: CorrectionDistance(req.Latitude, req.Longitude, req.CorrectedLatitude, req.CorrectedLongitude),
		Amount:             bc.UnitPrice,
		Currency:           bc.Currency,
		ReferenceID:        NewReferenceID("RDM"),
		QRCode:             NewQRCode(),
		GoogleMapsURL:      GoogleMapsURL(req.CorrectedLatitude, req.CorrectedLongitude),
		Status:             constants.PinStatusActive,
		RedemptionMethod:   constants.RedemptionMethodBulkCode,
		RedeemedCode:       code,
		CreatedAt:          time.Now().UTC(),
	}

	err = uc.tm.Exec(ctx, func(ctx context.Context) error {
		won, err := uc.codeRepo.MarkUsed(ctx, code, pin.PinID, phone)
		if err != nil {
			return err
		}
		if !won {
			return errors.New(errors.ErrCodeBulkCodeUsed, "code already used")
		}
		return uc.pinRepo.CreatePin(ctx, pin)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Code %s redeemed for pin %s", code, pin.PinID)
	return pin, nil
}

// GetAgent 查询代理账目
func (uc *PaymentUsecase) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	agent, err := uc.agentRepo.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, errors.New(errors.ErrCodeAgentNotFound, "agent not found")
	}
	return agent, nil
}

// ExpireStaleOrders 周期清扫: 超 TTL 的 pending 订单置为 failed,
// 超过保留期的 failed 订单删除
func (uc *PaymentUsecase) ExpireStaleOrders(ctx context.Context) (int64, int64, error) {
	now := time.Now().UTC()
	var expired int64

	n, err := uc.orderRepo.ExpirePending(ctx, constants.OrderKindSinglePin, now.Add(-uc.pricing.PinOrderTTLDuration()))
	if err != nil {
		return 0, 0, err
	}
	expired += n

	n, err = uc.orderRepo.ExpirePending(ctx, constants.OrderKindBulkBatch, now.Add(-uc.pricing.BulkOrderTTLDuration()))
	if err != nil {
		return expired, 0, err
	}
	expired += n

	purged, err := uc.orderRepo.PurgeFailed(ctx, now.Add(-constants.FailedOrderRetention))
	if err != nil {
		return expired, 0, err
	}
	return expired, purged, nil
}

// CleanupExpiredCodes 删除过期超过保留期且从未使用的兑换码
func (uc *PaymentUsecase) CleanupExpiredCodes(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-constants.ExpiredCodeRetention)
	return uc.codeRepo.PurgeExpired(ctx, cutoff)
}

func (uc *PaymentUsecase) validatePinRequest(req *PinOrderRequest) error {
	if req == nil || req.LocationName == "" || req.CustomerPhone == "" {
		return errors.New(errors.ErrCodeValidationFailed, "missing required fields")
	}
	if !ValidPhone(req.CustomerPhone) {
		return errors.New(errors.ErrCodeValidationFailed, "valid phone number is required")
	}
	if !ValidCoordinate(req.Latitude, req.Longitude) ||
		!ValidCoordinate(req.CorrectedLatitude, req.CorrectedLongitude) {
		return errors.New(errors.ErrCodeValidationFailed, "coordinates out of range")
	}
	return nil
}

func (uc *PaymentUsecase) validateBulkRequest(req *BulkOrderRequest) error {
	if req == nil {
		return errors.New(errors.ErrCodeValidationFailed, "missing required fields")
	}
	if req.Quantity < uc.bulkMinQuantity() {
		return errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("minimum bulk purchase is %d codes", uc.bulkMinQuantity()))
	}
	if !ValidEmail(req.Email) {
		return errors.New(errors.ErrCodeValidationFailed, "valid email is required")
	}
	if !ValidPhone(req.Phone) {
		return errors.New(errors.ErrCodeValidationFailed, "valid phone number is required")
	}
	return nil
}

func (uc *PaymentUsecase) ttlFor(kind string) time.Duration {
	if kind == constants.OrderKindBulkBatch {
		return uc.pricing.BulkOrderTTLDuration()
	}
	return uc.pricing.PinOrderTTLDuration()
}

func (uc *PaymentUsecase) bulkMinQuantity() int {
	if uc.pricing != nil && uc.pricing.BulkMinQuantity > 0 {
		return uc.pricing.BulkMinQuantity
	}
	return constants.DefaultBulkMinQuantity
}

func (uc *PaymentUsecase) commission() float64 {
	if uc.pricing != nil && uc.pricing.AgentCommission > 0 {
		return uc.pricing.AgentCommission
	}
	return constants.DefaultAgentCommission
}

func (uc *PaymentUsecase) codeValidity() time.Duration {
	days := constants.DefaultCodeValidityDays
	if uc.pricing != nil && uc.pricing.CodeValidityDays > 0 {
		days = uc.pricing.CodeValidityDays
	}
	return time.Duration(days) * 24 * time.Hour
}
