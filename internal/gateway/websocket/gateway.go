// Package websocket 聊天的 WebSocket 传输层
// Hub 负责扇出，Gateway 负责升级连接并驱动读写循环
package websocket

import (
	"net/http"
	"strings"

	"room_chat_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// GatewayOptions 连接参数
type GatewayOptions struct {
	AllowedOrigin string // 为空或 "*" 时不检查 Origin
	ReadLimit     int64  // 单帧最大字节数
	BufferSize    int    // 每个连接的发送缓冲
}

// Gateway 把 HTTP 请求升级为 WebSocket 连接并接入 Hub
type Gateway struct {
	hub      *Hub
	events   EventHandler
	upgrader websocket.Upgrader
	opts     GatewayOptions
}

func NewGateway(hub *Hub, events EventHandler, opts GatewayOptions) *Gateway {
	if opts.BufferSize <= 0 {
		opts.BufferSize = constants.CHANNEL_SIZE
	}
	g := &Gateway{hub: hub, events: events, opts: opts}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// Serve GET /ws
func (g *Gateway) Serve(c *gin.Context) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已经写好了错误响应
		zap.L().Warn("ws upgrade failed", zap.String("ip", c.ClientIP()), zap.Error(err))
		return
	}

	client := newClient(uuid.NewString(), conn, g.opts.BufferSize)
	if !g.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	go client.Write()
	g.events.Connect(client.ID)
	go client.Read(g.hub, g.events, g.opts.ReadLimit)

	zap.L().Info("ws connected", zap.String("connId", client.ID), zap.String("ip", c.ClientIP()))
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	allowed := strings.TrimRight(g.opts.AllowedOrigin, "/")
	if allowed == "" || allowed == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	// 非浏览器客户端不带 Origin
	return origin == "" || strings.EqualFold(strings.TrimRight(origin, "/"), allowed)
}
