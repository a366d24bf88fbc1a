// Package router HTTP 路由注册
package router

import (
	"net/http"

	"room_chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合和路由级中间件
type Router struct {
	handlers *handler.Handlers
	// apiLimiter 挂在 /api 组上的限流中间件，可以为 nil
	apiLimiter gin.HandlerFunc
	// metrics /metrics 处理器，可以为 nil
	metrics http.Handler
}

func NewRouter(handlers *handler.Handlers, apiLimiter gin.HandlerFunc, metrics http.Handler) *Router {
	return &Router{handlers: handlers, apiLimiter: apiLimiter, metrics: metrics}
}

// RegisterRoutes 注册所有路由
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	if rt.apiLimiter != nil {
		api.Use(rt.apiLimiter)
	}
	rt.RegisterChatRoutes(api)
	rt.RegisterWebSocketRoutes(r)
	rt.RegisterSystemRoutes(r)
	r.NoRoute(handler.HandleNotFound)
}
