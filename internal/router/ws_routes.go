package router

import "github.com/gin-gonic/gin"

// RegisterWebSocketRoutes WebSocket 连接入口，ws://host:port/ws
func (rt *Router) RegisterWebSocketRoutes(r *gin.Engine) {
	if rt.handlers.WebSocket != nil {
		r.GET("/ws", rt.handlers.WebSocket)
	}
}
