package data

import (
	"context"
	"errors"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
	"github.com/PhilatPlay/PinMyPlace/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// agentRepo 代理仓库实现
type agentRepo struct {
	data *Data
	log  *log.Helper
}

// NewAgentRepo 创建代理仓库
func NewAgentRepo(data *Data, logger log.Logger) biz.AgentRepo {
	return &agentRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetAgent 按 agentID 获取, 不存在时返回 (nil, nil)
func (r *agentRepo) GetAgent(ctx context.Context, agentID string) (*biz.Agent, error) {
	var m model.Agent
	if err := r.data.DB(ctx).First(&m, "agent_id = ?", agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("Failed to get agent %s: %v", agentID, err)
		return nil, err
	}
	return &biz.Agent{
		AgentID:           m.AgentID,
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		IsActive:          m.IsActive,
		TotalPinsSold:     m.TotalPinsSold,
		TotalEarnings:     m.TotalEarnings,
		PendingCommission: m.PendingCommission,
		PaidCommission:    m.PaidCommission,
		CreatedAt:         m.CreatedAt,
	}, nil
}

// CreditSale 售出一单, 单条 UPDATE 表达式原子自增
// agentID 不存在时 RowsAffected 为 0, 静默跳过
func (r *agentRepo) CreditSale(ctx context.Context, agentID string, commission float64) error {
	tx := r.data.DB(ctx).Model(&model.Agent{}).
		Where("agent_id = ?", agentID).
		Updates(map[string]interface{}{
			"total_pins_sold":    gorm.Expr("total_pins_sold + 1"),
			"total_earnings":     gorm.Expr("total_earnings + ?", commission),
			"pending_commission": gorm.Expr("pending_commission + ?", commission),
		})
	if tx.Error != nil {
		r.log.Errorf("Failed to credit sale for agent %s: %v", agentID, tx.Error)
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		r.log.Warnf("Sale credited to unknown agent %s, skipped", agentID)
	}
	return nil
}
