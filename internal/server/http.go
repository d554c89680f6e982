package server

import (
	"encoding/json"
	"io"
	stdhttp "net/http"

	"github.com/PhilatPlay/PinMyPlace/internal/auth"
	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/errors"
	"github.com/PhilatPlay/PinMyPlace/internal/service"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *conf.Bootstrap,
	pin *service.PinService,
	bulk *service.BulkService,
	webhook *service.WebhookService,
	agent *service.AgentService,
	logger log.Logger,
) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			auth.Middleware(),
		),
		http.ErrorEncoder(customErrorEncoder),
	}
	if c.Server.Http.Addr != "" {
		opts = append(opts, http.Address(c.Server.Http.Addr))
	}
	srv := http.NewServer(opts...)

	registerPinRoutes(srv, pin)
	registerBulkRoutes(srv, bulk)
	registerWebhookRoutes(srv, webhook)
	registerAgentRoutes(srv, agent)
	registerCurrencyRoute(srv, pin)

	// 注册健康检查端点
	srv.Route("/").GET("/health", func(ctx http.Context) error {
		return ctx.Result(200, map[string]string{"status": "ok", "service": "pinmyplace"})
	})

	return srv
}

func registerPinRoutes(srv *http.Server, svc *service.PinService) {
	r := srv.Route("/api/pins")

	r.POST("/initiate-payment", func(ctx http.Context) error {
		var req service.InitiatePinRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.InitiatePayment(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	// 核账入口, 幂等, 客户端轮询重试都打这里
	r.POST("/verify-payment", func(ctx http.Context) error {
		var req service.VerifyPaymentRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.VerifyPayment(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/validate-code", func(ctx http.Context) error {
		var req service.ValidateCodeRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.ValidateCode(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/redeem-code", func(ctx http.Context) error {
		var req service.RedeemCodeRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.RedeemCode(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/{pinId}", func(ctx http.Context) error {
		reply, err := svc.GetPin(ctx, ctx.Vars().Get("pinId"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})
}

func registerBulkRoutes(srv *http.Server, svc *service.BulkService) {
	r := srv.Route("/api/bulk")

	r.POST("/initiate-payment", func(ctx http.Context) error {
		var req service.InitiateBulkRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.InitiatePurchase(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/verify-and-generate", func(ctx http.Context) error {
		var req service.VerifyPaymentRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.VerifyAndGenerate(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})
}

func registerWebhookRoutes(srv *http.Server, svc *service.WebhookService) {
	r := srv.Route("/webhooks")

	// 签名都是对原始请求体计算的, 先读 body 再处理
	r.POST("/xendit", func(ctx http.Context) error {
		body, err := io.ReadAll(ctx.Request().Body)
		if err != nil {
			return err
		}
		token := ctx.Request().Header.Get("X-Callback-Token")
		reply, err := svc.HandleXendit(ctx, token, body)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/stripe", func(ctx http.Context) error {
		body, err := io.ReadAll(ctx.Request().Body)
		if err != nil {
			return err
		}
		signature := ctx.Request().Header.Get("Stripe-Signature")
		reply, err := svc.HandleStripe(ctx, signature, body)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})
}

func registerAgentRoutes(srv *http.Server, svc *service.AgentService) {
	r := srv.Route("/api/agents")

	r.GET("/{agentId}", func(ctx http.Context) error {
		if err := auth.RequireAdmin(ctx); err != nil {
			return err
		}
		reply, err := svc.GetAgent(ctx, ctx.Vars().Get("agentId"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})
}

// registerCurrencyRoute 货币表与探测端点, 公开访问
func registerCurrencyRoute(srv *http.Server, svc *service.PinService) {
	srv.Route("/api").GET("/currencies", func(ctx http.Context) error {
		reply, err := svc.Currencies(ctx, ctx.Query().Get("country"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})
}

func customErrorEncoder(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	se := kerrors.FromError(err)
	status := stdhttp.StatusInternalServerError
	response := map[string]interface{}{
		"code":    status,
		"message": "internal server error",
	}

	if se != nil {
		status = mapErrorStatus(int(se.Code))
		response["code"] = se.Code
		response["reason"] = se.Reason
		response["message"] = se.Message
		if len(se.Metadata) > 0 {
			response["metadata"] = se.Metadata
		}
	} else if err != nil {
		response["message"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// mapErrorStatus 业务错误码到 HTTP 状态码
func mapErrorStatus(code int) int {
	if code >= 100 && code < 600 {
		return code
	}
	switch code {
	case errors.ErrCodeValidationFailed:
		return stdhttp.StatusBadRequest
	case errors.ErrCodeVerifyIndeterminate:
		// 核账结果不确定, 让客户端稍后重试
		return stdhttp.StatusServiceUnavailable
	case errors.ErrCodePaymentNotConfirmed, errors.ErrCodeOrderExpired,
		errors.ErrCodeAmountMismatch, errors.ErrCodeBulkCodeUsed, errors.ErrCodeBulkCodeExpired:
		return stdhttp.StatusPaymentRequired
	case errors.ErrCodeWebhookSignatureInvalid:
		return stdhttp.StatusUnauthorized
	case errors.ErrCodeOrderNotFound, errors.ErrCodePinNotFound,
		errors.ErrCodeBulkCodeInvalid, errors.ErrCodeAgentNotFound:
		return stdhttp.StatusNotFound
	}
	return stdhttp.StatusInternalServerError
}
