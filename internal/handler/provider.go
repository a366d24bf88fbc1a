// Package handler HTTP 请求处理器
package handler

import "github.com/gin-gonic/gin"

// Handlers 聚合所有 Handler，Router 层通过它注册路由
type Handlers struct {
	Chat   *ChatHandler
	System *SystemHandler
	// WebSocket 升级入口
	WebSocket gin.HandlerFunc
}

func NewHandlers(chat *ChatHandler, system *SystemHandler, ws gin.HandlerFunc) *Handlers {
	return &Handlers{
		Chat:      chat,
		System:    system,
		WebSocket: ws,
	}
}
