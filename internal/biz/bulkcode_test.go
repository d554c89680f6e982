package biz

import (
	"strings"
	"testing"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/constants"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := GenerateCode()
		if !strings.HasPrefix(code, constants.CodePrefix) {
			t.Fatalf("code %s missing prefix %s", code, constants.CodePrefix)
		}
		body := strings.TrimPrefix(code, constants.CodePrefix)
		if len(body) != constants.CodeLength {
			t.Fatalf("code body %s has length %d, want %d", body, len(body), constants.CodeLength)
		}
		for _, c := range body {
			if !strings.ContainsRune(constants.CodeCharset, c) {
				t.Fatalf("code %s contains %q outside charset", code, c)
			}
		}
		seen[code] = true
	}
	// 粗略的随机性检查: 一千个码几乎不可能有大量重复
	if len(seen) < 990 {
		t.Errorf("only %d distinct codes out of 1000", len(seen))
	}
}

func TestBulkCodeIsValid(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		code BulkCode
		want bool
	}{
		{"fresh", BulkCode{ExpiresAt: now.Add(time.Hour)}, true},
		{"used", BulkCode{IsUsed: true, ExpiresAt: now.Add(time.Hour)}, false},
		{"expired", BulkCode{ExpiresAt: now.Add(-time.Minute)}, false},
		{"used and expired", BulkCode{IsUsed: true, ExpiresAt: now.Add(-time.Minute)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.IsValid(now); got != tt.want {
				t.Errorf("IsValid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dl-abcd2345", "DL-ABCD2345"},
		{"  DL-ABCD2345  ", "DL-ABCD2345"},
		{"DL-ABCD2345", "DL-ABCD2345"},
	}
	for _, tt := range tests {
		if got := normalizeCode(tt.in); got != tt.want {
			t.Errorf("normalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
