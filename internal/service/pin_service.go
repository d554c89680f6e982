package service

import (
	"context"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
)

// PinService 单 pin 支付与查询接口
type PinService struct {
	payment *biz.PaymentUsecase
	pin     *biz.PinUsecase
}

// NewPinService 创建 pin 服务
func NewPinService(payment *biz.PaymentUsecase, pin *biz.PinUsecase) *PinService {
	return &PinService{payment: payment, pin: pin}
}

// InitiatePinRequest 单 pin 下单请求
type InitiatePinRequest struct {
	LocationName       string  `json:"locationName"`
	Address            string  `json:"address"`
	CustomerPhone      string  `json:"customerPhone"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	CorrectedLatitude  float64 `json:"correctedLatitude"`
	CorrectedLongitude float64 `json:"correctedLongitude"`
	Currency           string  `json:"currency"`
	AgentID            string  `json:"agentId"`
}

// PaymentSessionReply 下单响应
type PaymentSessionReply struct {
	ReferenceID  string  `json:"referenceNumber"`
	Gateway      string  `json:"gateway"`
	PaymentLink  string  `json:"paymentLink,omitempty"`
	ClientSecret string  `json:"clientSecret,omitempty"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Symbol       string  `json:"symbol"`
	ExpiresIn    int64   `json:"expiresIn"`
}

// PinReply pin 响应
type PinReply struct {
	PinID              string  `json:"pinId"`
	LocationName       string  `json:"locationName"`
	Address            string  `json:"address"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	CorrectedLatitude  float64 `json:"correctedLatitude"`
	CorrectedLongitude float64 `json:"correctedLongitude"`
	CorrectionDistance float64 `json:"correctionDistance"`
	ReferenceID        string  `json:"referenceNumber"`
	QRCode             string  `json:"qrCode"`
	GoogleMapsURL      string  `json:"googleMapsUrl"`
	Status             string  `json:"status"`
	RedemptionMethod   string  `json:"redemptionMethod"`
	AccessCount        int64   `json:"accessCount"`
	CreatedAt          string  `json:"createdAt"`
}

// InitiatePayment 创建单 pin 支付会话
func (s *PinService) InitiatePayment(ctx context.Context, req *InitiatePinRequest) (*PaymentSessionReply, error) {
	reply, err := s.payment.InitiatePinOrder(ctx, &biz.PinOrderRequest{
		LocationName:       req.LocationName,
		Address:            req.Address,
		CustomerPhone:      req.CustomerPhone,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		CorrectedLatitude:  req.CorrectedLatitude,
		CorrectedLongitude: req.CorrectedLongitude,
		Currency:           req.Currency,
		AgentID:            req.AgentID,
	})
	if err != nil {
		return nil, err
	}
	return toSessionReply(reply), nil
}

// VerifyPaymentRequest 核账请求
type VerifyPaymentRequest struct {
	ReferenceID string `json:"referenceNumber"`
}

// VerifyPayment 核账并返回激活的 pin, 可重复调用
func (s *PinService) VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*PinReply, error) {
	pin, err := s.payment.ReconcilePin(ctx, req.ReferenceID)
	if err != nil {
		return nil, err
	}
	return toPinReply(pin), nil
}

// GetPin 公开查询 pin
func (s *PinService) GetPin(ctx context.Context, pinID string) (*PinReply, error) {
	pin, err := s.pin.GetPin(ctx, pinID)
	if err != nil {
		return nil, err
	}
	return toPinReply(pin), nil
}

// RedeemCodeRequest 兑换码建 pin 请求
type RedeemCodeRequest struct {
	Code               string  `json:"code"`
	LocationName       string  `json:"locationName"`
	Address            string  `json:"address"`
	CustomerPhone      string  `json:"customerPhone"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	CorrectedLatitude  float64 `json:"correctedLatitude"`
	CorrectedLongitude float64 `json:"correctedLongitude"`
}

// RedeemCode 用兑换码创建 pin
func (s *PinService) RedeemCode(ctx context.Context, req *RedeemCodeRequest) (*PinReply, error) {
	pin, err := s.payment.RedeemCode(ctx, &biz.RedeemRequest{
		Code:               req.Code,
		LocationName:       req.LocationName,
		Address:            req.Address,
		CustomerPhone:      req.CustomerPhone,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		CorrectedLatitude:  req.CorrectedLatitude,
		CorrectedLongitude: req.CorrectedLongitude,
	})
	if err != nil {
		return nil, err
	}
	return toPinReply(pin), nil
}

// ValidateCodeRequest 兑换码预检请求
type ValidateCodeRequest struct {
	Code string `json:"code"`
}

// ValidateCodeReply 兑换码预检响应
type ValidateCodeReply struct {
	Valid     bool   `json:"valid"`
	Currency  string `json:"currency,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// ValidateCode 兑换码可用性预检
func (s *PinService) ValidateCode(ctx context.Context, req *ValidateCodeRequest) (*ValidateCodeReply, error) {
	bc, err := s.payment.ValidateCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	return &ValidateCodeReply{
		Valid:     true,
		Currency:  bc.Currency,
		ExpiresAt: bc.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// CurrenciesReply 支持的货币列表
type CurrenciesReply struct {
	Detected   biz.Currency   `json:"detected"`
	Currencies []biz.Currency `json:"currencies"`
}

// Currencies 货币与价格表; country 非空时按国家推断展示货币
func (s *PinService) Currencies(ctx context.Context, country string) (*CurrenciesReply, error) {
	return &CurrenciesReply{
		Detected:   s.pin.DetectCurrency(ctx, country),
		Currencies: biz.AllCurrencies(),
	}, nil
}

func toSessionReply(r *biz.InitiateReply) *PaymentSessionReply {
	return &PaymentSessionReply{
		ReferenceID:  r.ReferenceID,
		Gateway:      r.Gateway,
		PaymentLink:  r.RedirectURL,
		ClientSecret: r.ClientToken,
		Amount:       r.Amount,
		Currency:     r.Currency.Code,
		Symbol:       r.Currency.Symbol,
		ExpiresIn:    r.ExpiresIn,
	}
}

func toPinReply(p *biz.Pin) *PinReply {
	return &PinReply{
		PinID:              p.PinID,
		LocationName:       p.LocationName,
		Address:            p.Address,
		Latitude:           p.Latitude,
		Longitude:          p.Longitude,
		CorrectedLatitude:  p.CorrectedLatitude,
		CorrectedLongitude: p.CorrectedLongitude,
		CorrectionDistance: p.CorrectionDistance,
		ReferenceID:        p.ReferenceID,
		QRCode:             p.QRCode,
		GoogleMapsURL:      p.GoogleMapsURL,
		Status:             p.Status,
		RedemptionMethod:   p.RedemptionMethod,
		AccessCount:        p.AccessCount,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
	}
}
