package router

import (
	"fmt"
	"strings"

	"github.com/morimall/morimall/internal/cache"
	"github.com/morimall/morimall/internal/config"
	adminhandlers "github.com/morimall/morimall/internal/http/handlers/admin"
	publichandlers "github.com/morimall/morimall/internal/http/handlers/public"
	"github.com/morimall/morimall/internal/logger"
	"github.com/morimall/morimall/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mm"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_rate_limited",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_rate_limited",
	}
	redeemRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:redeem", redisPrefix),
		WindowSeconds: 60,
		MaxRequests:   30,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// 客户接口（需鉴权）
		customer := apiV1.Group("")
		customer.Use(CustomerJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.CustomerRepo))
		{
			customer.GET("/me", publicHandler.GetProfile)
			customer.PUT("/me/address", publicHandler.UpdateAddress)
			customer.GET("/me/loyalty", publicHandler.GetMyLoyalty)
			customer.GET("/me/loyalty/history", publicHandler.GetMyLoyaltyHistory)
			customer.POST("/orders", publicHandler.CreateOrder)
			customer.GET("/orders", publicHandler.ListMyOrders)
			customer.GET("/orders/:id", publicHandler.GetMyOrder)
			customer.POST("/orders/:id/cancel", publicHandler.CancelMyOrder)
			customer.GET("/orders/:id/shipping", publicHandler.GetMyOrderShipping)
			customer.POST("/orders/:id/redeem/prepare", publicHandler.PrepareRedeem)
			customer.POST("/orders/:id/redeem", publicHandler.RedeemPoints)
			customer.POST("/shop/redeem-points", RateLimitMiddleware(redisClient, redeemRule, KeyByIP), publicHandler.RedeemPointsLegacy)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 客户管理
				authorized.GET("/customers", adminHandler.GetAdminCustomers)

				// 商品管理
				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)

				// 订单管理
				authorized.GET("/orders", adminHandler.GetAdminOrders)
				authorized.GET("/orders/:id", adminHandler.GetAdminOrder)
				authorized.POST("/orders/:id/confirm", adminHandler.ConfirmAdminOrder)
				authorized.POST("/orders/:id/cancel", adminHandler.CancelAdminOrder)

				// 积分管理
				authorized.GET("/loyalty/cards/:customer_id", adminHandler.GetLoyaltyCard)
				authorized.POST("/loyalty/adjust", adminHandler.AdjustLoyaltyPoints)
				authorized.GET("/loyalty/history", adminHandler.GetLoyaltyHistory)

				// 发货与 GDEX 托运
				authorized.GET("/pickings", adminHandler.GetAdminPickings)
				authorized.GET("/pickings/:id", adminHandler.GetAdminPicking)
				authorized.POST("/pickings/:id/gdex/consignment", adminHandler.CreateGdexConsignment)
				authorized.POST("/pickings/gdex/consignments", adminHandler.CreateGdexConsignmentBatch)
				authorized.POST("/pickings/:id/gdex/sync", adminHandler.SyncGdexStatus)
				authorized.POST("/pickings/gdex/sync-all", adminHandler.SyncGdexStatusAll)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
