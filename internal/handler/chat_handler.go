package handler

import (
	"context"
	"net/http"
	"time"

	"room_chat_server/internal/dto/request"
	"room_chat_server/internal/dto/respond"
	"room_chat_server/internal/model"

	"github.com/gin-gonic/gin"
)

// ChatReader 聊天读模型，由 chat.Coordinator 实现
type ChatReader interface {
	ListMessages(ctx context.Context, room, before string, limit int) respond.MessageListRespond
	ListRooms() respond.RoomListRespond
	ListActiveUsers() []model.Session
}

// ChatHandler 房间、历史和在线用户查询
type ChatHandler struct {
	chat ChatReader
}

func NewChatHandler(chat ChatReader) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// GetMessageList 分页获取房间历史
// GET /api/messages?room=general&before=2024-01-01T00:00:00Z&limit=25
func (h *ChatHandler) GetMessageList(c *gin.Context) {
	var req request.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	HandleSuccess(c, h.chat.ListMessages(c.Request.Context(), req.Room, req.Before, req.Limit))
}

// GetRoomList 预设房间列表
// GET /api/rooms
func (h *ChatHandler) GetRoomList(c *gin.Context) {
	HandleSuccess(c, h.chat.ListRooms())
}

// GetUserList 当前在线用户
// GET /api/users
func (h *ChatHandler) GetUserList(c *gin.Context) {
	HandleSuccess(c, h.chat.ListActiveUsers())
}

// HealthSource 健康检查所需的运行指标
type HealthSource interface {
	Uptime() time.Duration
	Snapshot() respond.HealthMetrics
}

// SystemHandler 健康检查与服务信息
type SystemHandler struct {
	metrics     HealthSource
	persistence func() bool
	appName     string
	version     string
	environment string
}

func NewSystemHandler(metrics HealthSource, persistence func() bool, appName, version, environment string) *SystemHandler {
	return &SystemHandler{
		metrics:     metrics,
		persistence: persistence,
		appName:     appName,
		version:     version,
		environment: environment,
	}
}

// Health GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	database := "in-memory"
	if h.persistence != nil && h.persistence() {
		database = "connected"
	}
	c.JSON(http.StatusOK, respond.HealthRespond{
		Status:      "OK",
		Timestamp:   time.Now().UTC(),
		Uptime:      h.metrics.Uptime().Seconds(),
		Database:    database,
		Environment: h.environment,
		Metrics:     h.metrics.Snapshot(),
	})
}

// Root GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     h.appName + " is running",
		"version":     h.version,
		"environment": h.environment,
	})
}
