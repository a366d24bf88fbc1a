// Package https_server 创建 Gin 引擎，配置中间件、静态资源和路由
package https_server

import (
	"net/http"
	"strings"

	"room_chat_server/internal/handler"
	"room_chat_server/internal/infrastructure/logger"
	"room_chat_server/internal/infrastructure/middleware"
	"room_chat_server/internal/infrastructure/monitoring"
	"room_chat_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options 引擎参数
type Options struct {
	ClientURL   string // 允许跨域的前端地址，为空或 "*" 时允许所有来源
	PublicPath  string // 静态客户端目录，挂载到 /static
	Secure      middleware.SecureOptions
	Metrics     *monitoring.Metrics     // 可以为 nil
	RateLimiter *middleware.RateLimiter // 可以为 nil
}

// Init 创建 Gin 引擎
// 中间件顺序：日志 -> 恢复 -> 指标 -> 安全头 -> CORS，/api 组额外限流
func Init(handlers *handler.Handlers, opts Options) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.GinLogger(), logger.GinRecovery(true))

	var metricsHandler http.Handler
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.Middleware())
		metricsHandler = opts.Metrics.Handler()
	}
	engine.Use(middleware.SecureHeaders(opts.Secure))
	engine.Use(cors.New(corsConfig(opts.ClientURL)))

	if opts.PublicPath != "" {
		engine.Static("/static", opts.PublicPath)
	}

	var limiter gin.HandlerFunc
	if opts.RateLimiter != nil {
		limiter = opts.RateLimiter.Middleware()
	}
	router.NewRouter(handlers, limiter, metricsHandler).RegisterRoutes(engine)
	return engine
}

func corsConfig(clientURL string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}

	origin := strings.TrimRight(strings.TrimSpace(clientURL), "/")
	if origin == "" || origin == "*" {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = []string{origin}
	c.AllowCredentials = true
	return c
}
