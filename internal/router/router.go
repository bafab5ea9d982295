package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fuguang-next/internal/cache"
	"github.com/fuguang-next/internal/config"
	adminhandlers "github.com/fuguang-next/internal/http/handlers/admin"
	publichandlers "github.com/fuguang-next/internal/http/handlers/public"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMetricsPath = "/metrics"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	if err := registerValidators(); err != nil {
		logger.Errorw("router_register_validators_failed", "error", err)
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", cache.Prefix()),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.CheckoutRateLimit.BlockSeconds,
		MessageKey:    "error.checkout_rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 支付宝回跳与异步通知（无需登录，依赖验签）
		alipay := apiV1.Group("/payments/alipay")
		{
			alipay.GET("/return", publicHandler.AlipayReturn)
			alipay.POST("/notify", publicHandler.AlipayNotify)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.AuthService, c.UserRepo))
		{
			user.POST("/cart", publicHandler.AddToCart)
			user.GET("/cart", publicHandler.GetCart)
			user.GET("/cart/selected", publicHandler.GetSelectedCart)
			user.PATCH("/cart/selection", publicHandler.SetCartSelection)
			user.PUT("/cart/selection", publicHandler.SetAllCartSelections)
			user.DELETE("/cart/:course_id", publicHandler.RemoveCartItem)

			user.GET("/coupons", publicHandler.ListCoupons)
			user.GET("/coupons/usable", publicHandler.ListUsableCoupons)

			user.POST("/orders", RateLimitMiddleware(redisClient, checkoutRule, KeyByUserID), publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/statuses", publicHandler.ListOrderStatuses)
			user.GET("/orders/:order_number", publicHandler.GetOrder)
			user.POST("/orders/:order_number/cancel", publicHandler.CancelOrder)

			user.GET("/payments/alipay/:order_number/link", publicHandler.GetPaymentLink)
			user.GET("/payments/alipay/:order_number/query", publicHandler.QueryPayment)

			user.GET("/me/credit", publicHandler.GetCredit)
			user.GET("/me/credit/records", publicHandler.ListCreditRecords)
		}

		// 运营接口
		admin := apiV1.Group("/admin")
		admin.Use(AdminJWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService))
		{
			admin.POST("/coupon-issuances", adminHandler.IssueCoupon)
			admin.DELETE("/coupon-issuances/:id", adminHandler.RevokeCoupon)
			admin.POST("/users/:id/credit", adminHandler.AdjustUserCredit)
			admin.GET("/payment-reviews", adminHandler.ListPaymentReviews)
			admin.POST("/payment-reviews/:id/resolve", adminHandler.ResolvePaymentReview)
		}
	}

	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = defaultMetricsPath
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func registerValidators() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return publichandlers.RegisterValidators(engine)
}
