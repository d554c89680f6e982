// Package gateway 支付网关防腐层
// 每个网关实现 biz.Gateway, 把各自的发票/会话/意图模型
// 归一化为 创建会话 + 查询支付状态 两个动作
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

const defaultTimeout = 30 * time.Second

// NewGateways 按配置构建网关注册表
func NewGateways(c *conf.Bootstrap, logger log.Logger) biz.Gateways {
	var payment *conf.Payment
	if c != nil {
		payment = c.Payment
	}
	if payment == nil {
		payment = &conf.Payment{}
	}

	client := &http.Client{Timeout: paymentTimeout(payment)}
	gws := biz.Gateways{}
	if payment.Xendit != nil && payment.Xendit.SecretKey != "" {
		gws[constants.GatewayXendit] = NewXendit(payment, client, logger)
	}
	if payment.Stripe != nil && payment.Stripe.SecretKey != "" {
		gws[constants.GatewayStripeCheckout] = NewStripeCheckout(payment, client, logger)
		gws[constants.GatewayStripeIntent] = NewStripeIntent(payment, client, logger)
	}
	return gws
}

func paymentTimeout(p *conf.Payment) time.Duration {
	if p != nil && p.Timeout != "" {
		if d, err := time.ParseDuration(p.Timeout); err == nil && d > 0 {
			return d
		}
	}
	return defaultTimeout
}

// apiError 网关返回了非 2xx 响应
type apiError struct {
	Gateway string
	Status  int
	Body    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s api returned %d: %s", e.Gateway, e.Status, e.Body)
}

// readBody 读取响应体, 截断到可记日志的长度
func readBody(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// do 发送请求并校验状态码, 非 2xx 返回 apiError
func do(ctx context.Context, client *http.Client, gateway string, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", gateway, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readBody(resp)
		resp.Body.Close()
		return nil, &apiError{Gateway: gateway, Status: resp.StatusCode, Body: body}
	}
	return resp, nil
}

// minorUnits 金额转最小货币单位 (分)
func minorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

// fromMinorUnits 最小货币单位转回金额
func fromMinorUnits(units int64) float64 {
	return float64(units) / 100
}
