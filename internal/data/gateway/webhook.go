package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// 签名时间戳与当前时间允许的最大偏差
const signatureTolerance = 5 * time.Minute

// ValidXenditCallback 校验 Xendit 回调令牌 (x-callback-token 头)
func ValidXenditCallback(got, want string) bool {
	if want == "" || got == "" {
		return false
	}
	return hmac.Equal([]byte(got), []byte(want))
}

// ValidStripeSignature 校验 Stripe webhook 签名 (Stripe-Signature 头)
// 头格式 t=<unix>,v1=<hex>,...; 签名串是 "<t>.<payload>" 的 HMAC-SHA256
// 时间戳超出容忍窗口的请求判无效, 挡重放
func ValidStripeSignature(payload []byte, header, secret string, now time.Time) bool {
	if secret == "" || header == "" {
		return false
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	diff := now.Sub(time.Unix(ts, 0))
	if diff < -signatureTolerance || diff > signatureTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}
	return false
}
