// Package chat 实现聊天室核心协调层
// registry.go
// 核心职责：维护连接 ID -> Session 的映射，按插入顺序输出房间成员
package chat

import "room_chat_server/internal/model"

// Registry 会话注册表
// 自身不加锁，由 Coordinator 的互斥锁统一保护
type Registry struct {
	sessions map[string]*model.Session
	order    []string // 插入顺序，用于在线列表展示
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*model.Session)}
}

// Register 创建或覆盖 connID 的会话，用户名不要求唯一
// 覆盖已有会话时保留其原有的插入位置
func (r *Registry) Register(connID, username, room string) model.Session {
	if s, ok := r.sessions[connID]; ok {
		s.Username = username
		s.Room = room
		return *s
	}
	s := &model.Session{ID: connID, Username: username, Room: room}
	r.sessions[connID] = s
	r.order = append(r.order, connID)
	return *s
}

// Get 获取会话
func (r *Registry) Get(connID string) (model.Session, bool) {
	s, ok := r.sessions[connID]
	if !ok {
		return model.Session{}, false
	}
	return *s, true
}

// UpdateRoom 修改会话所在房间，会话不存在时什么也不做
func (r *Registry) UpdateRoom(connID, room string) {
	if s, ok := r.sessions[connID]; ok {
		s.Room = room
	}
}

// Remove 删除会话
func (r *Registry) Remove(connID string) {
	if _, ok := r.sessions[connID]; !ok {
		return
	}
	delete(r.sessions, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// ListByRoom 返回房间内的所有会话
func (r *Registry) ListByRoom(room string) []model.Session {
	users := make([]model.Session, 0)
	for _, id := range r.order {
		if s := r.sessions[id]; s.Room == room {
			users = append(users, *s)
		}
	}
	return users
}

// List 返回全部在线会话
func (r *Registry) List() []model.Session {
	users := make([]model.Session, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, *r.sessions[id])
	}
	return users
}
