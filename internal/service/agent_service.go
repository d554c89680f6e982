package service

import (
	"context"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
)

// AgentService 代理账目查询接口
type AgentService struct {
	payment *biz.PaymentUsecase
}

// NewAgentService 创建代理服务
func NewAgentService(payment *biz.PaymentUsecase) *AgentService {
	return &AgentService{payment: payment}
}

// AgentReply 代理账目
type AgentReply struct {
	AgentID           string  `json:"agentId"`
	Name              string  `json:"name"`
	IsActive          bool    `json:"isActive"`
	TotalPinsSold     int64   `json:"totalPinsSold"`
	TotalEarnings     float64 `json:"totalEarnings"`
	PendingCommission float64 `json:"pendingCommission"`
	PaidCommission    float64 `json:"paidCommission"`
	CreatedAt         string  `json:"createdAt"`
}

// GetAgent 查询代理账目
func (s *AgentService) GetAgent(ctx context.Context, agentID string) (*AgentReply, error) {
	agent, err := s.payment.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return &AgentReply{
		AgentID:           agent.AgentID,
		Name:              agent.Name,
		IsActive:          agent.IsActive,
		TotalPinsSold:     agent.TotalPinsSold,
		TotalEarnings:     agent.TotalEarnings,
		PendingCommission: agent.PendingCommission,
		PaidCommission:    agent.PaidCommission,
		CreatedAt:         agent.CreatedAt.Format(time.RFC3339),
	}, nil
}
