package biz

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/auth"
	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"
	"github.com/PhilatPlay/PinMyPlace/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

type paymentFixture struct {
	uc     *PaymentUsecase
	orders *fakeOrderRepo
	pins   *fakePinRepo
	codes  *fakeCodeRepo
	agents *fakeAgentRepo
	gw     *fakeGateway
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	c := &conf.Bootstrap{
		Pricing: &conf.Pricing{
			DefaultCurrency:     "PHP",
			AgentCommission:     25,
			BulkMinQuantity:     10,
			BulkDiscountPercent: 50,
			PinOrderTTL:         "24h",
			BulkOrderTTL:        "1h",
			CodeValidityDays:    180,
		},
	}
	orders := newFakeOrderRepo()
	pins := newFakePinRepo()
	codes := newFakeCodeRepo()
	agents := newFakeAgentRepo(&Agent{AgentID: "agent-1", Name: "Rosa", IsActive: true})
	gw := newFakeGateway(constants.GatewayXendit)
	gws := Gateways{
		constants.GatewayXendit:         gw,
		constants.GatewayStripeCheckout: gw,
		constants.GatewayStripeIntent:   gw,
	}
	uc := NewPaymentUsecase(NewGatewayRouter(c), gws, orders, pins, codes, agents, fakeTx{}, c, log.DefaultLogger)
	return &paymentFixture{uc: uc, orders: orders, pins: pins, codes: codes, agents: agents, gw: gw}
}

func validPinRequest() *PinOrderRequest {
	return &PinOrderRequest{
		LocationName:       "Sari-sari Store",
		Address:            "123 Mabini St",
		CustomerPhone:      "+639171234567",
		Latitude:           14.5995,
		Longitude:          120.9842,
		CorrectedLatitude:  14.5996,
		CorrectedLongitude: 120.9843,
		Currency:           "PHP",
		AgentID:            "agent-1",
	}
}

func TestInitiatePinOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending order with quoted amount", func(t *testing.T) {
		f := newPaymentFixture(t)
		reply, err := f.uc.InitiatePinOrder(ctx, validPinRequest())
		if err != nil {
			t.Fatalf("InitiatePinOrder: %v", err)
		}
		if reply.Gateway != constants.GatewayXendit {
			t.Errorf("gateway = %s, want xendit", reply.Gateway)
		}
		if reply.Amount != 100 {
			t.Errorf("amount = %.2f, want 100 (server-side PHP price)", reply.Amount)
		}
		order, _ := f.orders.GetOrder(ctx, reply.ReferenceID)
		if order == nil {
			t.Fatal("order not persisted")
		}
		if order.Status != constants.OrderStatusPending {
			t.Errorf("status = %s, want pending", order.Status)
		}
		if order.Amount != 100 || order.Currency != "PHP" {
			t.Errorf("order amount = %.2f %s, want 100 PHP", order.Amount, order.Currency)
		}
		if order.Pin == nil || order.Pin.LocationName != "Sari-sari Store" {
			t.Error("pin payload not stored on order")
		}
	})

	t.Run("unknown currency falls back to default", func(t *testing.T) {
		f := newPaymentFixture(t)
		req := validPinRequest()
		req.Currency = "XXX"
		reply, err := f.uc.InitiatePinOrder(ctx, req)
		if err != nil {
			t.Fatalf("InitiatePinOrder: %v", err)
		}
		if reply.Currency.Code != "PHP" {
			t.Errorf("currency = %s, want PHP fallback", reply.Currency.Code)
		}
	})

	t.Run("authenticated agent overrides body agent id", func(t *testing.T) {
		f := newPaymentFixture(t)
		req := validPinRequest()
		req.AgentID = "agent-spoofed"
		agentCtx := context.WithValue(ctx, auth.AgentIDKey, "agent-1")

		reply, err := f.uc.InitiatePinOrder(agentCtx, req)
		if err != nil {
			t.Fatalf("InitiatePinOrder: %v", err)
		}
		order, _ := f.orders.GetOrder(ctx, reply.ReferenceID)
		if order.AgentID != "agent-1" {
			t.Errorf("order agent = %s, want agent-1 from request identity", order.AgentID)
		}

		// 佣金记到认证身份名下
		f.gw.setResult(&VerifyResult{Paid: true, RawStatus: "PAID", Amount: 100, Currency: "PHP"})
		if _, err := f.uc.ReconcilePin(ctx, reply.ReferenceID); err != nil {
			t.Fatalf("ReconcilePin: %v", err)
		}
		if n := f.agents.saleCount("agent-1"); n != 1 {
			t.Errorf("agent-1 credited %d times, want 1", n)
		}
	})

	t.Run("body agent id used when request is unauthenticated", func(t *testing.T) {
		f := newPaymentFixture(t)
		reply, err := f.uc.InitiatePinOrder(ctx, validPinRequest())
		if err != nil {
			t.Fatalf("InitiatePinOrder: %v", err)
		}
		order, _ := f.orders.GetOrder(ctx, reply.ReferenceID)
		if order.AgentID != "agent-1" {
			t.Errorf("order agent = %s, want agent-1 from body", order.AgentID)
		}
	})

	t.Run("gateway failure leaves no order behind", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.gw.createErr = errFakeStorage
		_, err := f.uc.InitiatePinOrder(ctx, validPinRequest())
		if !errors.Is(err, errors.ErrCodeGatewayCreateFailed) {
			t.Fatalf("err = %v, want GATEWAY_CREATE_FAILED", err)
		}
		if len(f.orders.orders) != 0 {
			t.Error("pending order persisted despite gateway failure")
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		f := newPaymentFixture(t)
		cases := map[string]func(*PinOrderRequest){
			"missing name":  func(r *PinOrderRequest) { r.LocationName = "" },
			"bad phone":     func(r *PinOrderRequest) { r.CustomerPhone = "abc" },
			"bad latitude":  func(r *PinOrderRequest) { r.Latitude = 91 },
			"bad longitude": func(r *PinOrderRequest) { r.CorrectedLongitude = -200 },
		}
		for name, mutate := range cases {
			req := validPinRequest()
			mutate(req)
			if _, err := f.uc.InitiatePinOrder(ctx, req); !errors.Is(err, errors.ErrCodeValidationFailed) {
				t.Errorf("%s: err = %v, want VALIDATION_FAILED", name, err)
			}
		}
	})
}

func TestReconcilePin(t *testing.T) {
	ctx := context.Background()

	initiate := func(t *testing.T, f *paymentFixture) string {
		t.Helper()
		reply, err := f.uc.InitiatePinOrder(ctx, validPinRequest())
		if err != nil {
			t.Fatal(err)
		}
		return reply.ReferenceID
	}

	t.Run("unknown reference", func(t *testing.T) {
		f := newPaymentFixture(t)
		if _, err := f.uc.ReconcilePin(ctx, "PIN-0-NOPE"); !errors.Is(err, errors.ErrCodeOrderNotFound) {
			t.Fatalf("err = %v, want ORDER_NOT_FOUND", err)
		}
	})

	t.Run("paid order activates pin and credits agent once", func(t *testing.T) {
		f := newPaymentFixture(t)
		ref := initiate(t, f)
		f.gw.setResult(&VerifyResult{Paid: true, RawStatus: "PAID", Amount: 100, Currency: "PHP"})

		pin, err := f.uc.ReconcilePin(ctx, ref)
		if err != nil {
			t.Fatalf("ReconcilePin: %v", err)
		}
		if pin.ReferenceID != ref {
			t.Errorf("pin reference = %s, want %s", pin.ReferenceID, ref)
		}
		if pin.Status != constants.PinStatusActive {
			t.Errorf("pin status = %s, want active", pin.Status)
		}
		if pin.RedemptionMethod != constants.RedemptionMethodPayment {
			t.Errorf("redemption method = %s", pin.RedemptionMethod)
		}
		if got := f.orders.status(ref); got != constants.OrderStatusVerified {
			t.Errorf("order status = %s, want verified", got)
		}
		if n := f.agents.saleCount("agent-1"); n != 1 {
			t.Errorf("agent credited %d times, want 1", n)
		}

		// 重入: 返回同一个 pin, 不再查网关也不再记佣金
		verifies := f.gw.verifyCount()
		again, err := f.uc.ReconcilePin(ctx, ref)
		if err != nil {
			t.Fatalf("second ReconcilePin: %v", err)
		}
		if again.PinID != pin.PinID {
			t.Errorf("second call returned pin %s, want %s", again.PinID, pin.PinID)
		}
		if f.gw.verifyCount() != verifies {
			t.Error("verified order re-queried the gateway")
		}
		if n := f.agents.saleCount("agent-1"); n != 1 {
			t.Errorf("agent credited %d times after re-entry, want 1", n)
		}
	})

	t.Run("unpaid keeps order pending", func(t *testing.T) {
		f := newPaymentFixture(t)
		ref := initiate(t, f)
		if _, err := f.uc.ReconcilePin(ctx, ref); !errors.Is(err, errors.ErrCodePaymentNotConfirmed) {
			t.Fatalf("err = %v, want PAYMENT_NOT_CONFIRMED", err)
		}
		if got := f.orders.status(ref); got != constants.OrderStatusPending {
			t.Errorf("order status = %s, want pending", got)
		}
		if f.pins.count() != 0 {
			t.Error("pin created for unpaid order")
		}
	})

	t.Run("indeterminate verification keeps order pending and retryable", func(t *testing.T) {
		f := newPaymentFixture(t)
		ref := initiate(t, f)
		f.gw.verifyErr = errFakeStorage

		if _, err := f.uc.ReconcilePin(ctx, ref); !errors.Is(err, errors.ErrCodeVerifyIndeterminate) {
			t.Fatalf("err = %v, want VERIFY_INDETERMINATE", err)
		}
		if got := f.orders.status(ref); got != constants.OrderStatusPending {
			t.Errorf("order status = %s, want pending", got)
		}

		// 网关恢复后同一订单可以成功核账
		f.gw.verifyErr = nil
		f.gw.setResult(&VerifyResult{Paid: true, RawStatus: "PAID", Amount: 100, Currency: "PHP"})
		if _, err := f.uc.ReconcilePin(ctx, ref); err != nil {
			t.Fatalf("retry after recovery: %v", err)
		}
	})

	t.Run("amount mismatch refuses activation", func(t *testing.T) {
		f := newPaymentFixture(t)
		ref := initiate(t, f)
		f.gw.setResult(&VerifyResult{Paid: true, RawStatus: "PAID", Amount: 60, Currency: "PHP"})

		if _, err := f.uc.ReconcilePin(ctx, ref); !errors.Is(err, errors.ErrCodeAmountMismatch) {
			t.Fatalf("err = %v, want AMOUNT_MISMATCH", err)
		}
		if got := f.orders.status(ref); got != constants.OrderStatusPending {
			t.Errorf("order status = %s, want pending for manual review", got)
		}
		if f.pins.count() != 0 {
			t.Error("pin created despite amount mismatch")
		}
	})

	t.Run("sub-tolerance amount difference still activates", func(t *testing.T) {
		f := newPaymentFixture(t)
		ref := initiate(t, f)
		f.gw.setResult(&VerifyResult{Paid: true, RawStatus: "PAID", Amount: 100.005, Currency: "PHP"})
		if _, err := f.uc.ReconcilePin(ctx, ref); err != nil {
			t.Fatalf("ReconcilePin: %v", err)
		}
	})

	t.Run("ttl exceeded marks order failed", func(t *testing.T) {
		f := newPaymentFixture(t)
		ref := initiate(t, f)
		f.orders.mu.Lock()
		f.orders.orders[ref].CreatedAt = time.Now().Add(-25 * time.Hour)
		f.orders.mu.Unlock()

		if _, err := f.uc.ReconcilePin(ctx, ref); !errors.Is(err, errors.ErrCodeOrderExpired) {
			t.Fatalf("err = %v, want ORDER_EXPIRED", err)
		}
		if got := f.orders.status(ref); got != constants.OrderStatusFailed {
			t.Errorf("order status = %s, want failed", got)
		}
		// failed 终态之后始终 ORDER_EXPIRED
		if _, err := f.uc.ReconcilePin(ctx, ref); !errors.Is(err, errors.ErrCodeOrderExpired) {
			t.Fatalf("second call err = %v, want ORDER_EXPIRED", err)
		}
	})

	t.Run("concurrent reconciliation activates exactly once", func(t *testing.T) {
		f := newPaymentFixture(t)
		ref := initiate(t, f)
		f.gw.setResult(&VerifyResult{Paid: true, RawStatus: "PAID", Amount: 100, Currency: "PHP"})

		const callers = 8
		var wg sync.WaitGroup
		results := make([]*Pin, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = f.uc.ReconcilePin(ctx, ref)
			}()
		}
		wg.Wait()

		if f.pins.count() != 1 {
			t.Fatalf("pins created = %d, want exactly 1", f.pins.count())
		}
		if n := f.agents.saleCount("agent-1"); n != 1 {
			t.Errorf("agent credited %d times, want 1", n)
		}
		// 输家也要拿到赢家的产物, 不能把冲突当错误上抛
		for i, pin := range results {
			if errs[i] != nil {
				t.Errorf("caller %d failed: %v", i, errs[i])
				continue
			}
			if pin.ReferenceID != ref {
				t.Errorf("caller %d got pin for %s, want %s", i, pin.ReferenceID, ref)
			}
		}
	})
}

func TestReconcileBulk(t *testing.T) {
	ctx := context.Background()

	initiate := func(t *testing.T, f *paymentFixture, quantity int) string {
		t.Helper()
		reply, err := f.uc.InitiateBulkOrder(ctx, &BulkOrderRequest{
			Quantity: quantity,
			Email:    "buyer@example.com",
			Phone:    "+639171234567",
			Currency: "PHP",
		})
		if err != nil {
			t.Fatal(err)
		}
		return reply.ReferenceID
	}

	t.Run("below minimum quantity rejected", func(t *testing.T) {
		f := newPaymentFixture(t)
		_, err := f.uc.InitiateBulkOrder(ctx, &BulkOrderRequest{
			Quantity: 5,
			Email:    "buyer@example.com",
			Phone:    "+639171234567",
			Currency: "PHP",
		})
		if !errors.Is(err, errors.ErrCodeValidationFailed) {
			t.Fatalf("err = %v, want VALIDATION_FAILED", err)
		}
	})

	t.Run("bulk order prices at discount", func(t *testing.T) {
		f := newPaymentFixture(t)
		reply, err := f.uc.InitiateBulkOrder(ctx, &BulkOrderRequest{
			Quantity: 25,
			Email:    "buyer@example.com",
			Phone:    "+639171234567",
			Currency: "PHP",
		})
		if err != nil {
			t.Fatal(err)
		}
		// 100 PHP 标价五折 = 50, 25 个码共 1250
		if reply.Amount != 1250 {
			t.Errorf("amount = %.2f, want 1250", reply.Amount)
		}
	})

	t.Run("paid order generates the full batch once", func(t *testing.T) {
		f := newPaymentFixture(t)
		ref := initiate(t, f, 25)
		f.gw.setResult(&VerifyResult{Paid: true, RawStatus: "PAID", Amount: 1250, Currency: "PHP"})

		codes, err := f.uc.ReconcileBulk(ctx, ref)
		if err != nil {
			t.Fatalf("ReconcileBulk: %v", err)
		}
		if len(codes) != 25 {
			t.Fatalf("generated %d codes, want 25", len(codes))
		}
		seen := make(map[string]bool)
		for _, c := range codes {
			if seen[c.Code] {
				t.Errorf("duplicate code %s in batch", c.Code)
			}
			seen[c.Code] = true
			if c.IsUsed {
				t.Errorf("fresh code %s marked used", c.Code)
			}
			if c.UnitPrice != 50 {
				t.Errorf("unit price = %.2f, want 50", c.UnitPrice)
			}
		}

		// 重复核账返回同一批, 不加发
		again, err := f.uc.ReconcileBulk(ctx, ref)
		if err != nil {
			t.Fatalf("second ReconcileBulk: %v", err)
		}
		if len(again) != 25 {
			t.Errorf("second call returned %d codes, want 25", len(again))
		}
		for _, c := range again {
			if !seen[c.Code] {
				t.Errorf("second call invented new code %s", c.Code)
			}
		}
	})

	t.Run("crash recovery tops up missing codes", func(t *testing.T) {
		f := newPaymentFixture(t)
		ref := initiate(t, f, 10)
		// 模拟上次激活中途崩溃: 只发出去 4 个码, 订单还 pending
		now := time.Now()
		for i := 0; i < 4; i++ {
			_ = f.codes.InsertCode(ctx, &BulkCode{
				Code:        GenerateCode(),
				ReferenceID: ref,
				UnitPrice:   50,
				Currency:    "PHP",
				PurchasedAt: now,
				ExpiresAt:   now.Add(time.Hour),
			})
		}
		f.gw.setResult(&VerifyResult{Paid: true, RawStatus: "PAID", Amount: 500, Currency: "PHP"})

		codes, err := f.uc.ReconcileBulk(ctx, ref)
		if err != nil {
			t.Fatalf("ReconcileBulk: %v", err)
		}
		if len(codes) != 10 {
			t.Errorf("batch size after recovery = %d, want 10", len(codes))
		}
	})
}

func TestHandleGatewayEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("paid event activates via reconciliation", func(t *testing.T) {
		f := newPaymentFixture(t)
		reply, err := f.uc.InitiatePinOrder(ctx, validPinRequest())
		if err != nil {
			t.Fatal(err)
		}
		f.gw.setResult(&VerifyResult{Paid: true, RawStatus: "PAID", Amount: 100, Currency: "PHP"})

		// Stripe 风格: 回调带网关侧标识
		if err := f.uc.HandleGatewayEvent(ctx, "ext-"+reply.ReferenceID, true); err != nil {
			t.Fatalf("HandleGatewayEvent: %v", err)
		}
		if got := f.orders.status(reply.ReferenceID); got != constants.OrderStatusVerified {
			t.Errorf("order status = %s, want verified", got)
		}
		if f.pins.count() != 1 {
			t.Errorf("pins = %d, want 1", f.pins.count())
		}
	})

	t.Run("webhook claim alone never flips state", func(t *testing.T) {
		f := newPaymentFixture(t)
		reply, err := f.uc.InitiatePinOrder(ctx, validPinRequest())
		if err != nil {
			t.Fatal(err)
		}
		// 网关查询仍然说未支付, 即使回调声称已支付
		if err := f.uc.HandleGatewayEvent(ctx, reply.ReferenceID, true); err != nil {
			t.Fatalf("HandleGatewayEvent: %v", err)
		}
		if got := f.orders.status(reply.ReferenceID); got != constants.OrderStatusPending {
			t.Errorf("order status = %s, want pending", got)
		}
	})

	t.Run("non-paid event is ignored", func(t *testing.T) {
		f := newPaymentFixture(t)
		reply, err := f.uc.InitiatePinOrder(ctx, validPinRequest())
		if err != nil {
			t.Fatal(err)
		}
		if err := f.uc.HandleGatewayEvent(ctx, reply.ReferenceID, false); err != nil {
			t.Fatalf("HandleGatewayEvent: %v", err)
		}
		if got := f.orders.status(reply.ReferenceID); got != constants.OrderStatusPending {
			t.Errorf("order status = %s, want pending", got)
		}
	})

	t.Run("unknown reference does not error", func(t *testing.T) {
		f := newPaymentFixture(t)
		if err := f.uc.HandleGatewayEvent(ctx, "ext-unknown", true); err != nil {
			t.Fatalf("HandleGatewayEvent: %v", err)
		}
	})
}

func TestRedeemCode(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, f *paymentFixture, expiresAt time.Time) string {
		t.Helper()
		code := GenerateCode()
		if err := f.codes.InsertCode(ctx, &BulkCode{
			Code:        code,
			ReferenceID: "BULK-1-SEED",
			UnitPrice:   50,
			Currency:    "PHP",
			PurchasedAt: time.Now(),
			ExpiresAt:   expiresAt,
		}); err != nil {
			t.Fatal(err)
		}
		return code
	}

	redeemReq := func(code string) *RedeemRequest {
		return &RedeemRequest{
			Code:               code,
			LocationName:       "Warung Bu Siti",
			CustomerPhone:      "+628123456789",
			Latitude:           -6.2,
			Longitude:          106.8,
			CorrectedLatitude:  -6.2001,
			CorrectedLongitude: 106.8001,
		}
	}

	t.Run("valid code creates active pin and consumes code", func(t *testing.T) {
		f := newPaymentFixture(t)
		code := seed(t, f, time.Now().Add(24*time.Hour))

		pin, err := f.uc.RedeemCode(ctx, redeemReq(code))
		if err != nil {
			t.Fatalf("RedeemCode: %v", err)
		}
		if pin.RedemptionMethod != constants.RedemptionMethodBulkCode {
			t.Errorf("redemption method = %s", pin.RedemptionMethod)
		}
		stored, _ := f.codes.GetCode(ctx, code)
		if !stored.IsUsed || stored.RedeemedPinID != pin.PinID {
			t.Error("code not marked used with pin linkage")
		}

		// 同一个码第二次兑换必须失败
		if _, err := f.uc.RedeemCode(ctx, redeemReq(code)); !errors.Is(err, errors.ErrCodeBulkCodeUsed) {
			t.Fatalf("second redeem err = %v, want BULK_CODE_USED", err)
		}
		if f.pins.count() != 1 {
			t.Errorf("pins = %d, want 1", f.pins.count())
		}
	})

	t.Run("expired code rejected", func(t *testing.T) {
		f := newPaymentFixture(t)
		code := seed(t, f, time.Now().Add(-time.Minute))
		if _, err := f.uc.RedeemCode(ctx, redeemReq(code)); !errors.Is(err, errors.ErrCodeBulkCodeExpired) {
			t.Fatalf("err = %v, want BULK_CODE_EXPIRED", err)
		}
	})

	t.Run("unknown code rejected", func(t *testing.T) {
		f := newPaymentFixture(t)
		if _, err := f.uc.RedeemCode(ctx, redeemReq("DL-NOPE1234")); !errors.Is(err, errors.ErrCodeBulkCodeInvalid) {
			t.Fatalf("err = %v, want BULK_CODE_INVALID", err)
		}
	})

	t.Run("code lookup is case and whitespace insensitive", func(t *testing.T) {
		f := newPaymentFixture(t)
		code := seed(t, f, time.Now().Add(24*time.Hour))
		req := redeemReq("  " + strings.ToLower(code) + " ")
		if _, err := f.uc.RedeemCode(ctx, req); err != nil {
			t.Fatalf("RedeemCode with messy input: %v", err)
		}
	})
}

func TestExpireStaleOrders(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	mk := func(ref, kind, status string, age time.Duration) {
		_ = f.orders.CreateOrder(ctx, &Order{
			ReferenceID: ref,
			Kind:        kind,
			Status:      status,
			CreatedAt:   time.Now().Add(-age),
		})
	}
	mk("PIN-1-FRESH", constants.OrderKindSinglePin, constants.OrderStatusPending, time.Hour)
	mk("PIN-2-STALE", constants.OrderKindSinglePin, constants.OrderStatusPending, 25*time.Hour)
	mk("BULK-1-STALE", constants.OrderKindBulkBatch, constants.OrderStatusPending, 2*time.Hour)
	mk("PIN-3-OLD", constants.OrderKindSinglePin, constants.OrderStatusFailed, 8*24*time.Hour)

	expired, purged, err := f.uc.ExpireStaleOrders(ctx)
	if err != nil {
		t.Fatalf("ExpireStaleOrders: %v", err)
	}
	if expired != 2 {
		t.Errorf("expired = %d, want 2", expired)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	if got := f.orders.status("PIN-1-FRESH"); got != constants.OrderStatusPending {
		t.Errorf("fresh pin order status = %s, want pending", got)
	}
	if got := f.orders.status("BULK-1-STALE"); got != constants.OrderStatusFailed {
		t.Errorf("stale bulk order status = %s, want failed", got)
	}
}
