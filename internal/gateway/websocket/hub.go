package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// outbound 出站帧 {"event": ..., "data": ...}
type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ConnectionObserver 连接数与丢弃事件的观测者
type ConnectionObserver interface {
	ConnectionOpened()
	ConnectionClosed()
	EventDropped()
}

type noopObserver struct{}

func (noopObserver) ConnectionOpened() {}
func (noopObserver) ConnectionClosed() {}
func (noopObserver) EventDropped()     {}

// Hub 在线连接与传输层房间成员关系
// 实现 chat.Broadcaster：发送是非阻塞的，连接缓冲满时直接丢弃该事件
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	rooms    map[string]map[string]struct{}
	closed   bool
	observer ConnectionObserver
}

// NewHub observer 可以为 nil
func NewHub(observer ConnectionObserver) *Hub {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Hub{
		clients:  make(map[string]*Client),
		rooms:    make(map[string]map[string]struct{}),
		observer: observer,
	}
}

// Register 登记新连接；Hub 已关闭时返回 false
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.ID] = c
	h.observer.ConnectionOpened()
	return true
}

// Unregister 移除连接并关闭其发送通道，重复调用无副作用
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	delete(h.clients, connID)
	for room, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	// 在写锁内关闭，保证 emit 不会向已关闭的通道发送
	close(c.send)
	h.observer.ConnectionClosed()
}

// JoinRoom 未登记的连接忽略
func (h *Hub) JoinRoom(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[connID]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[room] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) LeaveRoom(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// EmitToRoom payload 只序列化一次
func (h *Hub) EmitToRoom(room, event string, payload any) {
	frame, ok := encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID := range h.rooms[room] {
		h.deliver(h.clients[connID], event, frame)
	}
}

func (h *Hub) EmitToConnection(connID, event string, payload any) {
	frame, ok := encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.clients[connID], event, frame)
}

// Count 在线连接数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 拒绝新连接并关闭所有底层连接
// 读循环随之退出，各自完成断开流程
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.closeConn()
	}
}

// deliver 调用方持有读锁
func (h *Hub) deliver(c *Client, event string, frame []byte) {
	if c == nil {
		return
	}
	select {
	case c.send <- frame:
	default:
		h.observer.EventDropped()
		zap.L().Warn("send buffer full, event dropped", zap.String("connId", c.ID), zap.String("event", event))
	}
}

func encode(event string, payload any) ([]byte, bool) {
	frame, err := json.Marshal(outbound{Event: event, Data: payload})
	if err != nil {
		zap.L().Error("encode event failed", zap.String("event", event), zap.Error(err))
		return nil, false
	}
	return frame, true
}
