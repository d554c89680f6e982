package biz

import (
	"math"

	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"
)

// defaultGatewayTable 货币到网关家族的内置分区
// 东南亚电子钱包走 Xendit, 拉美/港币只支持卡的走 Payment Intents,
// 其余走 Checkout 跳转; 重新分配某个货币只需要改部署配置, 不碰核账引擎
var defaultGatewayTable = map[string]string{
	"PHP": constants.GatewayXendit,
	"IDR": constants.GatewayXendit,
	"THB": constants.GatewayXendit,
	"MYR": constants.GatewayXendit,
	"SGD": constants.GatewayXendit,
	"VND": constants.GatewayXendit,
	"MXN": constants.GatewayStripeIntent,
	"BRL": constants.GatewayStripeIntent,
	"COP": constants.GatewayStripeIntent,
	"ARS": constants.GatewayStripeIntent,
	"HKD": constants.GatewayStripeIntent,
	"USD": constants.GatewayStripeCheckout,
}

// Selection 路由结果: 网关标识加上静态配置中的标价
type Selection struct {
	Gateway  string
	Amount   float64
	Currency Currency
}

// GatewayRouter 货币到支付网关的纯函数路由
type GatewayRouter struct {
	defaultCurrency string
	assign          map[string]string
	pricing         *conf.Pricing
}

// NewGatewayRouter 根据部署配置构造路由表
func NewGatewayRouter(c *conf.Bootstrap) *GatewayRouter {
	defaultCurrency := "PHP"
	var pricing *conf.Pricing
	if c != nil && c.Pricing != nil {
		pricing = c.Pricing
		// 配错的默认货币不接受, 留在 PHP 上
		if IsSupportedCurrency(pricing.DefaultCurrency) {
			defaultCurrency = pricing.DefaultCurrency
		}
	}

	assign := make(map[string]string, len(defaultGatewayTable))
	for code, gw := range defaultGatewayTable {
		assign[code] = gw
	}
	if pricing != nil {
		for code, gw := range pricing.Gateways {
			assign[code] = gw
		}
	}

	return &GatewayRouter{
		defaultCurrency: defaultCurrency,
		assign:          assign,
		pricing:         pricing,
	}
}

// DefaultCurrency 返回配置的默认货币代码
func (r *GatewayRouter) DefaultCurrency() string {
	return r.defaultCurrency
}

// SelectGateway 为货币选择网关和标价, 无副作用
// 未知货币回退到默认货币, 不报错
func (r *GatewayRouter) SelectGateway(currencyCode string) Selection {
	currency := GetCurrency(currencyCode, r.defaultCurrency)
	gw, ok := r.assign[currency.Code]
	if !ok {
		gw = constants.GatewayStripeCheckout
	}
	return Selection{
		Gateway:  gw,
		Amount:   currency.Price,
		Currency: currency,
	}
}

// BulkUnitPrice 批量购买的单价: 达到最低数量后按折扣价, 否则返回 0 表示不符合条件
func (r *GatewayRouter) BulkUnitPrice(quantity int, currencyCode string) float64 {
	minQty := constants.DefaultBulkMinQuantity
	discount := constants.DefaultBulkDiscountPercent
	if r.pricing != nil {
		if r.pricing.BulkMinQuantity > 0 {
			minQty = r.pricing.BulkMinQuantity
		}
		if r.pricing.BulkDiscountPercent > 0 {
			discount = r.pricing.BulkDiscountPercent
		}
	}
	if quantity < minQty {
		return 0
	}
	currency := GetCurrency(currencyCode, r.defaultCurrency)
	return math.Round(currency.Price * float64(100-discount) / 100)
}
