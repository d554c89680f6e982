package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validBootstrap() *Bootstrap {
	b := &Bootstrap{
		Server:  &Server{},
		Data:    &Data{},
		Payment: &Payment{ReturnURL: "https://pinmyplace.app/success"},
		Pricing: &Pricing{},
		Log:     &Log{Level: "info"},
	}
	b.Server.Http.Addr = "0.0.0.0:8000"
	b.Data.Database.Source = "root:root@tcp(127.0.0.1:3306)/pinmyplace"
	b.Payment.Xendit = &XenditConf{SecretKey: "xnd"}
	b.Payment.Stripe = &StripeConf{SecretKey: "sk"}
	return b
}

func TestValidate(t *testing.T) {
	if err := validBootstrap().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Bootstrap)
	}{
		{"missing server", func(b *Bootstrap) { b.Server = nil }},
		{"missing http addr", func(b *Bootstrap) { b.Server.Http.Addr = "" }},
		{"missing database source", func(b *Bootstrap) { b.Data.Database.Source = "" }},
		{"missing payment", func(b *Bootstrap) { b.Payment = nil }},
		{"missing return url", func(b *Bootstrap) { b.Payment.ReturnURL = "" }},
		{"no gateway secrets", func(b *Bootstrap) {
			b.Payment.Xendit.SecretKey = ""
			b.Payment.Stripe = nil
		}},
		{"discount over 100", func(b *Bootstrap) { b.Pricing.BulkDiscountPercent = 101 }},
		{"negative commission", func(b *Bootstrap) { b.Pricing.AgentCommission = -1 }},
		{"missing log", func(b *Bootstrap) { b.Log = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBootstrap()
			tt.mutate(b)
			if err := b.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestValidateSingleGateway(t *testing.T) {
	// 只接一家处理商的部署要能通过启动校验
	t.Run("xendit only", func(t *testing.T) {
		b := validBootstrap()
		b.Payment.Stripe = nil
		if err := b.Validate(); err != nil {
			t.Fatalf("xendit-only config rejected: %v", err)
		}
	})

	t.Run("stripe only", func(t *testing.T) {
		b := validBootstrap()
		b.Payment.Xendit = nil
		if err := b.Validate(); err != nil {
			t.Fatalf("stripe-only config rejected: %v", err)
		}
	})
}

func TestPricingTTLDefaults(t *testing.T) {
	var p *Pricing
	if d := p.PinOrderTTLDuration(); d != 24*time.Hour {
		t.Errorf("nil pricing pin TTL = %v, want 24h", d)
	}
	if d := p.BulkOrderTTLDuration(); d != time.Hour {
		t.Errorf("nil pricing bulk TTL = %v, want 1h", d)
	}

	p = &Pricing{PinOrderTTL: "6h", BulkOrderTTL: "30m"}
	if d := p.PinOrderTTLDuration(); d != 6*time.Hour {
		t.Errorf("pin TTL = %v, want 6h", d)
	}
	if d := p.BulkOrderTTLDuration(); d != 30*time.Minute {
		t.Errorf("bulk TTL = %v, want 30m", d)
	}

	p = &Pricing{PinOrderTTL: "bogus", BulkOrderTTL: "-1h"}
	if d := p.PinOrderTTLDuration(); d != 24*time.Hour {
		t.Errorf("bogus pin TTL = %v, want 24h default", d)
	}
	if d := p.BulkOrderTTLDuration(); d != time.Hour {
		t.Errorf("negative bulk TTL = %v, want 1h default", d)
	}
}

func TestLoad(t *testing.T) {
	content := `
server:
  http:
    addr: 0.0.0.0:9000
data:
  database:
    source: root:root@tcp(127.0.0.1:3306)/pinmyplace
  redis:
    addr: 127.0.0.1:6379
payment:
  return_url: https://pinmyplace.app/success
  xendit:
    secret_key: xnd_key
    callback_token: cb
  stripe:
    secret_key: sk_key
    webhook_secret: whsec
pricing:
  default_currency: PHP
  bulk_min_quantity: 10
  gateways:
    PHP: stripe_checkout
log:
  level: info
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Http.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %s", c.Server.Http.Addr)
	}
	if c.Payment.Xendit.SecretKey != "xnd_key" {
		t.Errorf("xendit key = %s", c.Payment.Xendit.SecretKey)
	}
	if c.Pricing.Gateways["PHP"] != "stripe_checkout" {
		t.Errorf("gateway override = %s", c.Pricing.Gateways["PHP"])
	}
	if err := c.Validate(); err != nil {
		t.Errorf("loaded config failed validation: %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
