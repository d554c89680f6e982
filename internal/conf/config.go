package conf

import (
	"fmt"
	"time"
)

type Bootstrap struct {
	Server  *Server  `yaml:"server" json:"server"`
	Data    *Data    `yaml:"data" json:"data"`
	Payment *Payment `yaml:"payment" json:"payment"`
	Pricing *Pricing `yaml:"pricing" json:"pricing"`
	Log     *Log     `yaml:"log" json:"log"`
}

type Server struct {
	Http struct {
		Addr    string `yaml:"addr" json:"addr"`
		Timeout string `yaml:"timeout" json:"timeout"`
	} `yaml:"http" json:"http"`
}

type Data struct {
	Database struct {
		Driver          string `yaml:"driver" json:"driver"`
		Source          string `yaml:"source" json:"source"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	} `yaml:"database" json:"database"`
	Redis struct {
		Addr         string `yaml:"addr" json:"addr"`
		Password     string `yaml:"password" json:"password"`
		Db           int32  `yaml:"db" json:"db"`
		ReadTimeout  string `yaml:"read_timeout" json:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout" json:"write_timeout"`
	} `yaml:"redis" json:"redis"`
}

// Payment 支付网关配置
// 每个网关的密钥在部署时配置, adapter 构造时注入, 不读环境变量
type Payment struct {
	ReturnURL string      `yaml:"return_url" json:"return_url"`
	CancelURL string      `yaml:"cancel_url" json:"cancel_url"`
	Timeout   string      `yaml:"timeout" json:"timeout"`
	Xendit    *XenditConf `yaml:"xendit" json:"xendit"`
	Stripe    *StripeConf `yaml:"stripe" json:"stripe"`
}

type XenditConf struct {
	SecretKey     string `yaml:"secret_key" json:"secret_key"`
	CallbackToken string `yaml:"callback_token" json:"callback_token"`
	ApiBase       string `yaml:"api_base" json:"api_base"`
}

type StripeConf struct {
	SecretKey     string `yaml:"secret_key" json:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
	ApiBase       string `yaml:"api_base" json:"api_base"`
}

// Pricing 定价与激活策略配置
// 佣金金额/批发折扣/有效期等历史上取值多次变动, 统一收口到部署配置
type Pricing struct {
	DefaultCurrency     string  `yaml:"default_currency" json:"default_currency"`
	AgentCommission     float64 `yaml:"agent_commission" json:"agent_commission"`
	BulkMinQuantity     int     `yaml:"bulk_min_quantity" json:"bulk_min_quantity"`
	BulkDiscountPercent int     `yaml:"bulk_discount_percent" json:"bulk_discount_percent"`
	PinOrderTTL         string  `yaml:"pin_order_ttl" json:"pin_order_ttl"`
	BulkOrderTTL        string  `yaml:"bulk_order_ttl" json:"bulk_order_ttl"`
	CodeValidityDays    int     `yaml:"code_validity_days" json:"code_validity_days"`
	// Gateways 货币到网关的静态分配表, 缺省条目使用内置分区
	Gateways map[string]string `yaml:"gateways" json:"gateways"`
}

type Log struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	Output     string `yaml:"output" json:"output"`
	FilePath   string `yaml:"file_path" json:"file_path"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// PinOrderTTLDuration 解析 pin 订单 TTL, 未配置或非法时返回 24h
func (p *Pricing) PinOrderTTLDuration() time.Duration {
	if p != nil && p.PinOrderTTL != "" {
		if d, err := time.ParseDuration(p.PinOrderTTL); err == nil && d > 0 {
			return d
		}
	}
	return 24 * time.Hour
}

// BulkOrderTTLDuration 解析 bulk 订单 TTL, 未配置或非法时返回 1h
func (p *Pricing) BulkOrderTTLDuration() time.Duration {
	if p != nil && p.BulkOrderTTL != "" {
		if d, err := time.ParseDuration(p.BulkOrderTTL); err == nil && d > 0 {
			return d
		}
	}
	return time.Hour
}

// Validate validates the configuration
func (b *Bootstrap) Validate() error {
	if b.Server == nil {
		return fmt.Errorf("server configuration is required")
	}
	if b.Server.Http.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	if b.Data == nil {
		return fmt.Errorf("data configuration is required")
	}
	if b.Data.Database.Source == "" {
		return fmt.Errorf("data.database.source is required")
	}
	if b.Payment == nil {
		return fmt.Errorf("payment configuration is required")
	}
	if b.Payment.ReturnURL == "" {
		return fmt.Errorf("payment.return_url is required")
	}
	// 单处理商部署是合法的, 未配置密钥的网关不注册即可
	xenditConfigured := b.Payment.Xendit != nil && b.Payment.Xendit.SecretKey != ""
	stripeConfigured := b.Payment.Stripe != nil && b.Payment.Stripe.SecretKey != ""
	if !xenditConfigured && !stripeConfigured {
		return fmt.Errorf("at least one payment gateway secret is required")
	}
	if b.Pricing != nil {
		if b.Pricing.BulkDiscountPercent < 0 || b.Pricing.BulkDiscountPercent > 100 {
			return fmt.Errorf("pricing.bulk_discount_percent must be between 0 and 100")
		}
		if b.Pricing.AgentCommission < 0 {
			return fmt.Errorf("pricing.agent_commission must not be negative")
		}
	}
	if b.Log == nil {
		return fmt.Errorf("log configuration is required")
	}
	return nil
}
