package router

import "github.com/gin-gonic/gin"

// RegisterSystemRoutes 健康检查、服务信息和 Prometheus 指标
func (rt *Router) RegisterSystemRoutes(r *gin.Engine) {
	r.GET("/", rt.handlers.System.Root)
	r.GET("/health", rt.handlers.System.Health)
	if rt.metrics != nil {
		r.GET("/metrics", gin.WrapH(rt.metrics))
	}
}
