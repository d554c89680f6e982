package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

const stripeDefaultBase = "https://api.stripe.com"

// StripeCheckout 托管收银台网关 (Checkout Sessions)
// 跳转链接由 Stripe 托管, 会话标识作为 external_ref 存在订单上
type StripeCheckout struct {
	apiBase   string
	secretKey string
	returnURL string
	cancelURL string
	client    *http.Client
	log       *log.Helper
}

// NewStripeCheckout 创建 Stripe Checkout 网关
func NewStripeCheckout(p *conf.Payment, client *http.Client, logger log.Logger) *StripeCheckout {
	apiBase := p.Stripe.ApiBase
	if apiBase == "" {
		apiBase = stripeDefaultBase
	}
	return &StripeCheckout{
		apiBase:   strings.TrimRight(apiBase, "/"),
		secretKey: p.Stripe.SecretKey,
		returnURL: p.ReturnURL,
		cancelURL: p.CancelURL,
		client:    client,
		log:       log.NewHelper(logger),
	}
}

// Name .
func (g *StripeCheckout) Name() string { return constants.GatewayStripeCheckout }

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

// Create 创建 Checkout 会话, Stripe API 是 form 编码
func (g *StripeCheckout) Create(ctx context.Context, req *biz.CreateRequest) (*biz.Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	// Stripe 回跳时把 {CHECKOUT_SESSION_ID} 替换成真实会话标识
	form.Set("success_url", g.returnURL+"?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", g.cancelURL)
	form.Set("client_reference_id", req.ReferenceID)
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][product_data][name]", "PinMyPlace GPS Pin")
	form.Set("line_items[0][price_data][product_data][description]", req.Description)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(minorUnits(req.Amount), 10))
	form.Set("line_items[0][quantity]", "1")
	for k, v := range req.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	resp, err := g.post(ctx, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var session stripeSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("stripe session decode failed: %w", err)
	}
	g.log.Infof("Created stripe checkout session %s for %s", session.ID, req.ReferenceID)
	return &biz.Session{
		ExternalRef: session.ID,
		RedirectURL: session.URL,
	}, nil
}

// Verify 查询会话, payment_status == paid 视为已支付
func (g *StripeCheckout) Verify(ctx context.Context, externalRef string) (*biz.VerifyResult, error) {
	httpReq, err := http.NewRequest(http.MethodGet, g.apiBase+"/v1/checkout/sessions/"+url.PathEscape(externalRef), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := do(ctx, g.client, g.Name(), httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", biz.ErrVerifyIndeterminate, err)
	}
	defer resp.Body.Close()

	var session stripeSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: session decode failed: %v", biz.ErrVerifyIndeterminate, err)
	}
	return &biz.VerifyResult{
		Paid:      session.PaymentStatus == "paid",
		RawStatus: session.PaymentStatus,
		Amount:    fromMinorUnits(session.AmountTotal),
		Currency:  strings.ToUpper(session.Currency),
	}, nil
}

func (g *StripeCheckout) post(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	httpReq, err := http.NewRequest(http.MethodPost, g.apiBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(ctx, g.client, g.Name(), httpReq)
}
