package auth

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// 定义 context key
type contextKey string

const (
	// AgentIDKey 代理ID的context key
	AgentIDKey contextKey = "agent_id"
	// RoleKey 角色的context key
	RoleKey contextKey = "role"
)

// Role 调用方角色
type Role string

const (
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Middleware 从上游认证代理注入的 Header 中提取代理身份
// 核心逻辑只把 agentId 当作不透明的佣金记账对象, 不做登录/会话管理
func Middleware() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				if agentID := tr.RequestHeader().Get("X-Agent-Id"); agentID != "" {
					ctx = context.WithValue(ctx, AgentIDKey, agentID)
				}
				// 未知角色值不入上下文
				switch role := Role(tr.RequestHeader().Get("X-Role")); role {
				case RoleAgent, RoleAdmin:
					ctx = context.WithValue(ctx, RoleKey, role)
				}
			}
			return handler(ctx, req)
		}
	}
}

// GetAgentIDFromContext 从context中获取代理ID
func GetAgentIDFromContext(ctx context.Context) (string, bool) {
	agentID, ok := ctx.Value(AgentIDKey).(string)
	return agentID, ok
}

// GetRoleFromContext 从context中获取角色
func GetRoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(RoleKey).(Role)
	return role, ok
}

// IsAdmin 判断当前调用方是否为管理员
func IsAdmin(ctx context.Context) bool {
	role, ok := GetRoleFromContext(ctx)
	return ok && role == RoleAdmin
}

// RequireAdmin 校验管理员权限
func RequireAdmin(ctx context.Context) error {
	if !IsAdmin(ctx) {
		return errors.Forbidden("FORBIDDEN", "admin access required")
	}
	return nil
}
