package biz

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/constants"
	kerrors "github.com/PhilatPlay/PinMyPlace/internal/errors"

	"golang.org/x/sync/errgroup"
)

// errLostRace 并发核账时 CAS 落败, 事务须回滚但不算失败
var errLostRace = errors.New("order verification won by concurrent caller")

// ErrPinExists 引用号唯一索引冲突, 另一次核账已经为该订单创建了 pin
var ErrPinExists = errors.New("pin already exists for reference")

// activate 为已确认支付的订单创建产物
// 幂等: 先查已有产物, 存在则补齐缺口后返回; 必须在事务内调用
func (uc *PaymentUsecase) activate(ctx context.Context, order *Order, candidates []string) error {
	switch order.Kind {
	case constants.OrderKindSinglePin:
		return uc.activatePin(ctx, order)
	case constants.OrderKindBulkBatch:
		return uc.activateBulk(ctx, order, candidates)
	default:
		return kerrors.New(kerrors.ErrCodeOrderNotFound, "unknown order kind")
	}
}

// activatePin 创建 pin 并给代理记佣金
// 佣金只在 pin 实际落库的那一次计入, 重入不会重复记账
func (uc *PaymentUsecase) activatePin(ctx context.Context, order *Order) error {
	existing, err := uc.pinRepo.GetPinByReference(ctx, order.ReferenceID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	payload := order.Pin
	if payload == nil {
		return kerrors.New(kerrors.ErrCodePinCreateFailed, "order missing pin payload")
	}

	pin := &Pin{
		PinID:              NewPinID(),
		LocationName:       payload.LocationName,
		Address:            payload.Address,
		CustomerPhone:      payload.CustomerPhone,
		Latitude:           payload.Latitude,
		Longitude:          payload.Longitude,
		CorrectedLatitude:  payload.CorrectedLatitude,
		CorrectedLongitude: payload.CorrectedLongitude,
		CorrectionDistance: CorrectionDistance(payload.Latitude, payload.Longitude, payload.CorrectedLatitude, payload.CorrectedLongitude),
		Amount:             order.Amount,
		Currency:           order.Currency,
		ReferenceID:        order.ReferenceID,
		AgentID:            order.AgentID,
		QRCode:             NewQRCode(),
		GoogleMapsURL:      GoogleMapsURL(payload.CorrectedLatitude, payload.CorrectedLongitude),
		Status:             constants.PinStatusActive,
		RedemptionMethod:   constants.RedemptionMethodPayment,
		CreatedAt:          time.Now().UTC(),
	}
	if err := uc.pinRepo.CreatePin(ctx, pin); err != nil {
		// 唯一索引仲裁: 赢家已插入同引用号的 pin, 按输家处理
		if errors.Is(err, ErrPinExists) {
			return errLostRace
		}
		return err
	}
	if order.AgentID != "" {
		if err := uc.agentRepo.CreditSale(ctx, order.AgentID, uc.commission()); err != nil {
			return err
		}
	}
	return nil
}

// activateBulk 为批量订单生成兑换码, 补齐到订单数量
// 唯一索引是冲突仲裁者: 撞码时换一个重试, 事务内顺序插入
func (uc *PaymentUsecase) activateBulk(ctx context.Context, order *Order, candidates []string) error {
	payload := order.Bulk
	if payload == nil {
		return kerrors.New(kerrors.ErrCodeBulkCodeGenerateFailed, "order missing bulk payload")
	}
	existing, err := uc.codeRepo.ListCodesByReference(ctx, order.ReferenceID)
	if err != nil {
		return err
	}
	missing := payload.Quantity - len(existing)
	if missing <= 0 {
		return nil
	}

	now := time.Now().UTC()
	expiresAt := now.Add(uc.codeValidity())
	for i := 0; i < missing; i++ {
		inserted := false
		for attempt := 0; attempt < constants.CodeMaxRetries; attempt++ {
			code := ""
			if len(candidates) > 0 {
				code, candidates = candidates[0], candidates[1:]
			} else {
				code = GenerateCode()
			}
			err := uc.codeRepo.InsertCode(ctx, &BulkCode{
				Code:          code,
				PurchaseEmail: payload.Email,
				PurchasePhone: payload.Phone,
				UnitPrice:     payload.UnitPrice,
				TotalPaid:     order.Amount,
				Currency:      order.Currency,
				ReferenceID:   order.ReferenceID,
				PurchasedAt:   now,
				ExpiresAt:     expiresAt,
			})
			if err == nil {
				inserted = true
				break
			}
			if errors.Is(err, ErrCodeTaken) {
				continue
			}
			return err
		}
		if !inserted {
			return kerrors.New(kerrors.ErrCodeBulkCodeGenerateFailed, "failed to generate unique codes")
		}
	}
	return nil
}

// pregenerateCodes 在事务外并发预检一批候选码, 降低事务内的撞码率
// 预检只是优化, 命中与否都不影响正确性, 出错时直接放弃候选
func (uc *PaymentUsecase) pregenerateCodes(ctx context.Context, order *Order) []string {
	if order.Kind != constants.OrderKindBulkBatch || order.Bulk == nil {
		return nil
	}
	quantity := order.Bulk.Quantity
	results := make([]string, quantity)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.CodeGenConcurrency)
	for i := 0; i < quantity; i++ {
		i := i
		g.Go(func() error {
			code := GenerateCode()
			existing, err := uc.codeRepo.GetCode(ctx, code)
			if err != nil {
				return err
			}
			if existing == nil {
				results[i] = code
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.log.Warnf("Failed to pre-check candidate codes for %s: %v", order.ReferenceID, err)
		return nil
	}

	candidates := make([]string, 0, quantity)
	for _, code := range results {
		if code != "" {
			candidates = append(candidates, code)
		}
	}
	return candidates
}

// normalizeCode 兑换码大小写与空白归一化
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
