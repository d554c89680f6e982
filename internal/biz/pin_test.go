package biz

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"
	"github.com/PhilatPlay/PinMyPlace/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

func TestCorrectionDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64 // 米
		tolerance              float64
	}{
		{"same point", 14.5995, 120.9842, 14.5995, 120.9842, 0, 0.01},
		// 赤道上经度差 1 度约 111.19 公里
		{"one degree longitude at equator", 0, 0, 0, 1, 111195, 100},
		// 马尼拉市内约 15 米的校正
		{"small correction", 14.5995, 120.9842, 14.5996, 120.9843, 15.6, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CorrectionDistance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("CorrectionDistance = %.2f, want %.2f (±%.2f)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestGoogleMapsURL(t *testing.T) {
	got := GoogleMapsURL(14.5995, 120.9842)
	want := "https://www.google.com/maps?q=14.599500,120.984200"
	if got != want {
		t.Errorf("GoogleMapsURL = %s, want %s", got, want)
	}
}

func TestPinUsecaseGetPin(t *testing.T) {
	ctx := context.Background()
	c := &conf.Bootstrap{Pricing: &conf.Pricing{DefaultCurrency: "PHP"}}

	newFixture := func() (*PinUsecase, *fakePinRepo) {
		pins := newFakePinRepo()
		uc := NewPinUsecase(pins, NewGatewayRouter(c), log.DefaultLogger)
		return uc, pins
	}

	t.Run("active pin returned with access counted", func(t *testing.T) {
		uc, pins := newFixture()
		_ = pins.CreatePin(ctx, &Pin{
			PinID:       "PIN-1-AAAAAA",
			ReferenceID: "PIN-1-AAAAAA",
			Status:      constants.PinStatusActive,
			CreatedAt:   time.Now(),
		})

		pin, err := uc.GetPin(ctx, "PIN-1-AAAAAA")
		if err != nil {
			t.Fatalf("GetPin: %v", err)
		}
		if pin.AccessCount != 1 {
			t.Errorf("access count = %d, want 1", pin.AccessCount)
		}
		stored, _ := pins.GetPin(ctx, "PIN-1-AAAAAA")
		if stored.AccessCount != 1 || stored.LastAccessed == nil {
			t.Error("access not recorded in store")
		}
	})

	t.Run("missing pin", func(t *testing.T) {
		uc, _ := newFixture()
		if _, err := uc.GetPin(ctx, "PIN-0-MISSING"); !errors.Is(err, errors.ErrCodePinNotFound) {
			t.Fatalf("err = %v, want PIN_NOT_FOUND", err)
		}
	})

	t.Run("inactive pin hidden", func(t *testing.T) {
		uc, pins := newFixture()
		_ = pins.CreatePin(ctx, &Pin{
			PinID:       "PIN-2-BBBBBB",
			ReferenceID: "PIN-2-BBBBBB",
			Status:      constants.PinStatusInactive,
		})
		if _, err := uc.GetPin(ctx, "PIN-2-BBBBBB"); !errors.Is(err, errors.ErrCodePinNotFound) {
			t.Fatalf("err = %v, want PIN_NOT_FOUND", err)
		}
	})
}

func TestNewReferenceID(t *testing.T) {
	ref := NewReferenceID("PIN")
	if len(ref) < len("PIN-")+13+1+6 {
		t.Fatalf("reference %s unexpectedly short", ref)
	}
	if ref[:4] != "PIN-" {
		t.Errorf("reference %s missing prefix", ref)
	}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		r := NewReferenceID("BULK")
		if seen[r] {
			t.Fatalf("duplicate reference %s", r)
		}
		seen[r] = true
	}
}
