package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

const xenditDefaultBase = "https://api.xendit.co"

// Xendit 东南亚网关, 走 Invoice API
// external_id 即我们的引用号, 回调里也带它
type Xendit struct {
	apiBase   string
	secretKey string
	returnURL string
	client    *http.Client
	log       *log.Helper
}

// NewXendit 创建 Xendit 网关
func NewXendit(p *conf.Payment, client *http.Client, logger log.Logger) *Xendit {
	apiBase := p.Xendit.ApiBase
	if apiBase == "" {
		apiBase = xenditDefaultBase
	}
	return &Xendit{
		apiBase:   strings.TrimRight(apiBase, "/"),
		secretKey: p.Xendit.SecretKey,
		returnURL: p.ReturnURL,
		client:    client,
		log:       log.NewHelper(logger),
	}
}

// Name .
func (g *Xendit) Name() string { return constants.GatewayXendit }

type xenditInvoice struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"external_id"`
	InvoiceURL string  `json:"invoice_url"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

// Create 创建发票, 让 Xendit 按货币展示可用支付方式
func (g *Xendit) Create(ctx context.Context, req *biz.CreateRequest) (*biz.Session, error) {
	email := req.CustomerEmail
	if email == "" {
		// Invoice API 要求 payer_email
		email = fmt.Sprintf("customer-%s@pinmyplace.app", strings.ToLower(req.ReferenceID))
	}
	// Xendit 不会像 Stripe 那样自动附加引用号, 自己拼到回跳地址上
	successURL := g.returnURL
	if strings.Contains(successURL, "?") {
		successURL += "&ref=" + url.QueryEscape(req.ReferenceID)
	} else {
		successURL += "?ref=" + url.QueryEscape(req.ReferenceID)
	}

	payload := map[string]interface{}{
		"external_id":          req.ReferenceID,
		"amount":               req.Amount,
		"currency":             req.Currency,
		"payer_email":          email,
		"description":          req.Description,
		"success_redirect_url": successURL,
		"items": []map[string]interface{}{{
			"name":     req.Description,
			"quantity": 1,
			"price":    req.Amount,
			"category": req.Metadata["type"],
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, g.apiBase+"/v2/invoices", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(g.secretKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := do(ctx, g.client, g.Name(), httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var inv xenditInvoice
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return nil, fmt.Errorf("xendit invoice decode failed: %w", err)
	}
	g.log.Infof("Created xendit invoice %s for %s", inv.ID, req.ReferenceID)
	return &biz.Session{
		ExternalRef: inv.ID,
		RedirectURL: inv.InvoiceURL,
	}, nil
}

// Verify 查询发票状态, PAID/SETTLED 视为已支付
// 任何传输或解码失败都按不确定上抛, 绝不当成未支付
func (g *Xendit) Verify(ctx context.Context, externalRef string) (*biz.VerifyResult, error) {
	httpReq, err := http.NewRequest(http.MethodGet, g.apiBase+"/v2/invoices/"+url.PathEscape(externalRef), nil)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(g.secretKey, "")

	resp, err := do(ctx, g.client, g.Name(), httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", biz.ErrVerifyIndeterminate, err)
	}
	defer resp.Body.Close()

	var inv xenditInvoice
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return nil, fmt.Errorf("%w: invoice decode failed: %v", biz.ErrVerifyIndeterminate, err)
	}
	return &biz.VerifyResult{
		Paid:      inv.Status == "PAID" || inv.Status == "SETTLED",
		RawStatus: inv.Status,
		Amount:    inv.Amount,
		Currency:  inv.Currency,
	}, nil
}
