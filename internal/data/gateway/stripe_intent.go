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

// StripeIntent 嵌入式支付网关 (Payment Intents), 服务拉美货币
// 不产生跳转链接, 把 client_secret 交给前端自己收款
type StripeIntent struct {
	apiBase   string
	secretKey string
	client    *http.Client
	log       *log.Helper
}

// NewStripeIntent 创建 Stripe Payment Intents 网关
func NewStripeIntent(p *conf.Payment, client *http.Client, logger log.Logger) *StripeIntent {
	apiBase := p.Stripe.ApiBase
	if apiBase == "" {
		apiBase = stripeDefaultBase
	}
	return &StripeIntent{
		apiBase:   strings.TrimRight(apiBase, "/"),
		secretKey: p.Stripe.SecretKey,
		client:    client,
		log:       log.NewHelper(logger),
	}
}

// Name .
func (g *StripeIntent) Name() string { return constants.GatewayStripeIntent }

type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Create 创建支付意图
func (g *StripeIntent) Create(ctx context.Context, req *biz.CreateRequest) (*biz.Session, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(minorUnits(req.Amount), 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("description", req.Description)
	form.Set("payment_method_types[]", "card")
	for k, v := range req.Metadata {
		form.Set("metadata["+k+"]", v)
	}
	if req.CustomerEmail != "" {
		form.Set("receipt_email", req.CustomerEmail)
	}

	httpReq, err := http.NewRequest(http.MethodPost, g.apiBase+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := do(ctx, g.client, g.Name(), httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var intent stripeIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("stripe intent decode failed: %w", err)
	}
	g.log.Infof("Created stripe payment intent %s for %s", intent.ID, req.ReferenceID)
	return &biz.Session{
		ExternalRef: intent.ID,
		ClientToken: intent.ClientSecret,
	}, nil
}

// Verify 查询支付意图, status == succeeded 视为已支付
func (g *StripeIntent) Verify(ctx context.Context, externalRef string) (*biz.VerifyResult, error) {
	httpReq, err := http.NewRequest(http.MethodGet, g.apiBase+"/v1/payment_intents/"+url.PathEscape(externalRef), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := do(ctx, g.client, g.Name(), httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", biz.ErrVerifyIndeterminate, err)
	}
	defer resp.Body.Close()

	var intent stripeIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("%w: intent decode failed: %v", biz.ErrVerifyIndeterminate, err)
	}
	return &biz.VerifyResult{
		Paid:      intent.Status == "succeeded",
		RawStatus: intent.Status,
		Amount:    fromMinorUnits(intent.Amount),
		Currency:  strings.ToUpper(intent.Currency),
	}, nil
}
