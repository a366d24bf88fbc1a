package router

import "github.com/gin-gonic/gin"

// RegisterChatRoutes 聊天读模型（挂在限流的 /api 组下）
func (rt *Router) RegisterChatRoutes(rg *gin.RouterGroup) {
	rg.GET("/messages", rt.handlers.Chat.GetMessageList) // 房间历史分页
	rg.GET("/rooms", rt.handlers.Chat.GetRoomList)       // 预设房间
	rg.GET("/users", rt.handlers.Chat.GetUserList)       // 在线用户
}
