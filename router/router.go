package router

import (
	"net/http"
	"strings"
	"time"

	"roleplay/api"
	"roleplay/config"
	_ "roleplay/docs"
	"roleplay/metrics"
	"roleplay/middleware"
	"roleplay/queue"
	"roleplay/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps 路由依赖的服务
type Deps struct {
	Conversations *service.ConversationService
	Voice         api.VoiceGateway
	Notifier      queue.Notifier
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.GinMiddleware())

	// CORS 中间件
	r.Use(CORSMiddleware(cfg.Server.CORSOrigins))

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	loginLimit := middleware.LoginRateLimit(
		cfg.RateLimit.LoginAttempts,
		time.Duration(cfg.RateLimit.LoginWindowSeconds)*time.Second,
	)
	inferenceLimit := middleware.InferenceRateLimit(cfg.RateLimit.InferenceRPS, cfg.RateLimit.InferenceBurst)

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录），注册与登录共用同一个限流计数
		authHandler := api.NewAuthHandler(cfg, deps.Notifier)
		v1.POST("/register", loginLimit, authHandler.Register)
		v1.POST("/token", loginLimit, authHandler.Token)

		// 需要 JWT 认证且账号启用的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(), middleware.ActiveUser())
		{
			authorized.GET("/users/me", authHandler.Me)

			roleHandler := api.NewRoleHandler()
			roles := authorized.Group("/roles")
			{
				roles.POST("", roleHandler.Create)
				roles.GET("", roleHandler.List)
				roles.GET("/:id", roleHandler.Get)
			}

			chatHandler := api.NewChatHandler(deps.Conversations)
			chats := authorized.Group("/chats")
			{
				chats.POST("", chatHandler.Create)
				chats.GET("", chatHandler.List)
				chats.DELETE("/bulk", chatHandler.BulkDelete)
				chats.GET("/:id/messages", chatHandler.Messages)
				chats.POST("/:id/message", inferenceLimit, chatHandler.Send)
				chats.GET("/:id/export", chatHandler.Export)
			}

			audioHandler := api.NewAudioHandler(deps.Voice)
			audio := authorized.Group("/audio", inferenceLimit)
			{
				audio.POST("/transcribe", audioHandler.Transcribe)
				audio.POST("/speak", audioHandler.Speak)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件，origins 为空或包含 "*" 时放行所有来源
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || allowAll {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
