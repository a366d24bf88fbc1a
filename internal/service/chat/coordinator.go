package chat

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"room_chat_server/internal/dto/request"
	"room_chat_server/internal/dto/respond"
	"room_chat_server/internal/model"
	"room_chat_server/pkg/constants"
	"room_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

const sendFailedMessage = "Failed to send message"

// IDGenerator 消息 ID 生成器
type IDGenerator interface {
	NextID() int64
}

// Options 聊天室参数
type Options struct {
	DefaultRoom  string   // 空白房间名回退到该房间
	PresetRooms  []string // 连接时下发给客户端的预设房间
	HistoryLimit int      // 每个房间保留的历史条数
	PageSize     int      // 快照和默认分页大小
	MaxFileSize  int      // 内联文件最大字节数
}

func (o *Options) normalize() {
	o.DefaultRoom = strings.TrimSpace(o.DefaultRoom)
	if o.DefaultRoom == "" {
		o.DefaultRoom = constants.DEFAULT_ROOM
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = constants.DEFAULT_HISTORY_LIMIT
	}
	if o.PageSize <= 0 {
		o.PageSize = constants.DEFAULT_PAGE_SIZE
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = constants.FILE_MAX_SIZE
	}
}

// Coordinator 事件协调器
// Registry、RoomStore、MessageIndex 三者由同一把互斥锁保护，
// 每个入站事件在锁内执行完毕后才处理下一个，状态变更不会交错
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	rooms    *RoomStore
	index    *MessageIndex

	out    Broadcaster
	bridge *PersistenceBridge
	ids    IDGenerator
	opts   Options
	now    func() time.Time
}

// NewCoordinator 创建协调器并初始化预设房间
// bridge 可以为 nil（纯内存模式）
func NewCoordinator(opts Options, out Broadcaster, bridge *PersistenceBridge, ids IDGenerator) *Coordinator {
	opts.normalize()
	index := NewMessageIndex()
	c := &Coordinator{
		registry: NewRegistry(),
		rooms:    NewRoomStore(opts.HistoryLimit, index),
		index:    index,
		out:      out,
		bridge:   bridge,
		ids:      ids,
		opts:     opts,
		now:      time.Now,
	}
	for _, room := range opts.PresetRooms {
		c.rooms.Ensure(room)
	}
	return c
}

// resolveRoom 去除首尾空白，空白时回退到默认房间，超长时截断
func (c *Coordinator) resolveRoom(raw string) string {
	room := strings.TrimSpace(raw)
	if room == "" {
		return c.opts.DefaultRoom
	}
	if utf8.RuneCountInString(room) > constants.MAX_ROOM_NAME_LENGTH {
		room = string([]rune(room)[:constants.MAX_ROOM_NAME_LENGTH])
	}
	return room
}

// ==================== 入站事件 ====================

// Connect 新连接建立时下发预设房间列表
func (c *Coordinator) Connect(connID string) {
	c.out.EmitToConnection(connID, EventRoomList, append([]string{}, c.opts.PresetRooms...))
}

// Join 加入房间；重复 join 会覆盖原会话
func (c *Coordinator) Join(connID string, req request.JoinRequest) {
	if strings.TrimSpace(req.Username) == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.resolveRoom(req.Room)
	c.rooms.Ensure(target)

	// 已在其他房间时先离开旧房间，避免传输层残留订阅
	if prev, ok := c.registry.Get(connID); ok && prev.Room != target {
		c.out.LeaveRoom(connID, prev.Room)
		typed := c.rooms.ClearTypingAll(connID)
		c.out.EmitToRoom(prev.Room, EventUserLeft, presence(prev))
		c.registry.UpdateRoom(connID, target)
		c.emitTypingUsers(prev.Room)
		c.emitTypingElsewhere(typed, prev.Room)
		c.emitUserList(prev.Room)
	}

	session := c.registry.Register(connID, req.Username, target)
	c.out.JoinRoom(connID, target)

	c.emitUserList(target)
	c.out.EmitToRoom(target, EventUserJoined, presence(session))
	c.out.EmitToConnection(connID, EventRoomJoined, c.snapshot(target))

	zap.L().Info("user joined", zap.String("username", session.Username), zap.String("room", target), zap.String("connId", connID))
}

// SwitchRoom 切换到另一个房间；未加入或目标与当前房间相同时忽略
func (c *Coordinator) SwitchRoom(connID string, req request.SwitchRoomRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.registry.Get(connID)
	if !ok {
		return
	}
	target := c.resolveRoom(req.Room)
	if session.Room == target {
		return
	}
	previous := session.Room
	c.rooms.Ensure(target)

	c.out.LeaveRoom(connID, previous)
	c.out.JoinRoom(connID, target)

	typed := c.rooms.ClearTypingAll(connID)
	c.emitTypingUsers(previous)
	c.emitTypingElsewhere(typed, previous)
	c.out.EmitToRoom(previous, EventUserLeft, presence(session))

	c.registry.UpdateRoom(connID, target)
	session.Room = target

	c.emitUserList(previous)
	c.emitUserList(target)

	c.out.EmitToRoom(target, EventUserJoined, presence(session))
	c.out.EmitToConnection(connID, EventRoomJoined, c.snapshot(target))

	zap.L().Info("user switched room", zap.String("username", session.Username),
		zap.String("from", previous), zap.String("to", target))
}

// SendMessage 房间消息；允许未加入的匿名发送者
// 任何失败只通过 error 事件通知发送者，不广播、不影响其他连接
func (c *Coordinator) SendMessage(connID string, req request.SendMessageRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg, err := c.commitMessage(connID, req)
	if err != nil {
		zap.L().Error("error handling message", zap.String("connId", connID), zap.Error(err))
		c.out.EmitToConnection(connID, EventError, respond.ErrorRespond{Message: sendFailedMessage})
		return
	}

	c.bridge.MirrorWrite(msg)
	c.out.EmitToRoom(msg.Room, EventReceiveMessage, msg.Clone())
}

// commitMessage 构造消息并写入房间历史与索引
func (c *Coordinator) commitMessage(connID string, req request.SendMessageRequest) (msg *model.Message, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			msg = nil
			err = errorx.Newf(errorx.CodeSendFailed, "send message panic: %v", rec)
		}
	}()

	if req.File != nil && len(req.File.Data) > c.opts.MaxFileSize {
		return nil, errorx.Newf(errorx.CodeSendFailed, "file %q exceeds %d bytes", req.File.Name, c.opts.MaxFileSize)
	}

	session, joined := c.registry.Get(connID)
	sender := constants.ANONYMOUS_SENDER
	room := c.opts.DefaultRoom
	if joined {
		sender = session.Username
		room = session.Room
	}
	if strings.TrimSpace(req.Room) != "" {
		room = c.resolveRoom(req.Room)
	}

	msg = &model.Message{
		ID:        model.MessageID(c.ids.NextID()),
		Room:      room,
		Sender:    sender,
		SenderID:  connID,
		Message:   req.Message,
		File:      req.File,
		Timestamp: c.timestamp(),
		ReadBy:    []string{},
	}
	c.rooms.AppendMessage(room, msg)
	return msg, nil
}

// Typing 设置或清除输入状态，并广播该房间最新的输入列表
func (c *Coordinator) Typing(connID string, req request.TypingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.registry.Get(connID)
	if !ok {
		return
	}
	room := session.Room
	if strings.TrimSpace(req.Room) != "" {
		room = c.resolveRoom(req.Room)
	}
	c.rooms.Ensure(room)

	if req.IsTyping {
		c.rooms.SetTyping(room, connID, session.Username)
	} else {
		c.rooms.ClearTyping(room, connID)
	}
	c.emitTypingUsers(room)
}

// PrivateMessage 私聊消息，只发给目标连接和发送者本人，不进入房间历史
func (c *Coordinator) PrivateMessage(connID string, req request.PrivateMessageRequest) {
	if strings.TrimSpace(req.To) == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	sender := constants.ANONYMOUS_SENDER
	if session, ok := c.registry.Get(connID); ok {
		sender = session.Username
	}
	msg := model.Message{
		ID:        model.MessageID(c.ids.NextID()),
		Room:      constants.PRIVATE_ROOM,
		Sender:    sender,
		SenderID:  connID,
		Message:   req.Message,
		Timestamp: c.timestamp(),
		ReadBy:    []string{},
		IsPrivate: true,
	}
	if req.To != connID {
		c.out.EmitToConnection(req.To, EventPrivateMessage, msg)
	}
	c.out.EmitToConnection(connID, EventPrivateMessage, msg)
}

// MessageRead 已读回执；同一连接重复回执是幂等的
func (c *Coordinator) MessageRead(connID string, req request.MessageReadRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Get(req.MessageID)
	if !ok {
		return
	}
	msg := entry.Message
	if msg.HasReader(connID) {
		return
	}
	msg.ReadBy = append(msg.ReadBy, connID)

	payload := respond.MessageReadRespond{
		MessageID: msg.ID,
		ReaderID:  connID,
		Room:      entry.Room,
	}
	c.out.EmitToRoom(entry.Room, EventMessageRead, payload)
	if msg.SenderID != "" {
		c.out.EmitToConnection(msg.SenderID, EventMessageRead, payload)
	}
	c.bridge.MirrorStore(msg)
}

// Disconnect 连接断开；从未加入的连接什么事件也不发
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.registry.Get(connID)
	if !ok {
		c.registry.Remove(connID)
		return
	}
	room := session.Room
	typed := c.rooms.ClearTypingAll(connID)
	c.out.LeaveRoom(connID, room)

	c.out.EmitToRoom(room, EventUserLeft, presence(session))
	c.emitTypingUsers(room)
	c.emitTypingElsewhere(typed, room)
	c.registry.Remove(connID)
	c.emitUserList(room)

	zap.L().Info("user left", zap.String("username", session.Username), zap.String("room", room))
}

// ==================== 读模型 ====================

// ListMessages 分页读取房间历史
// 内存中当前页为空且配置了持久化时，回退到存储读取
func (c *Coordinator) ListMessages(ctx context.Context, room, before string, limit int) respond.MessageListRespond {
	room = c.resolveRoom(room)
	if limit <= 0 {
		limit = c.opts.PageSize
	}
	if limit > constants.MAX_PAGE_SIZE {
		limit = constants.MAX_PAGE_SIZE
	}
	cursor := ParseCursor(before)

	c.mu.Lock()
	c.rooms.Ensure(room)
	messages := c.rooms.RecentMessages(room, limit, cursor)
	hasMore := c.rooms.HasMoreBefore(room, limit, cursor)
	c.mu.Unlock()

	if len(messages) == 0 && c.bridge.Enabled() {
		messages = c.bridge.Backfill(ctx, room, cursor, limit)
		hasMore = len(messages) >= limit
	}
	if messages == nil {
		messages = []model.Message{}
	}
	return respond.MessageListRespond{Room: room, Messages: messages, HasMore: hasMore}
}

// ListRooms 预设房间和默认房间
func (c *Coordinator) ListRooms() respond.RoomListRespond {
	return respond.RoomListRespond{
		Rooms:       append([]string{}, c.opts.PresetRooms...),
		DefaultRoom: c.opts.DefaultRoom,
	}
}

// ListActiveUsers 所有在线会话
func (c *Coordinator) ListActiveUsers() []model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.List()
}

// PersistenceEnabled 是否启用了持久化存储
func (c *Coordinator) PersistenceEnabled() bool {
	return c.bridge.Enabled()
}

// ==================== 内部辅助 ====================

func (c *Coordinator) timestamp() time.Time {
	return c.now().UTC().Truncate(time.Millisecond)
}

// snapshot 加入房间后发给请求方的快照
func (c *Coordinator) snapshot(room string) respond.RoomJoinedRespond {
	return respond.RoomJoinedRespond{
		Room:     room,
		Users:    c.registry.ListByRoom(room),
		Messages: c.rooms.RecentMessages(room, c.opts.PageSize, nil),
		HasMore:  c.rooms.HistoryLen(room) > c.opts.PageSize,
	}
}

func (c *Coordinator) emitUserList(room string) {
	c.out.EmitToRoom(room, EventUserList, respond.UserListRespond{Room: room, Users: c.registry.ListByRoom(room)})
}

func (c *Coordinator) emitTypingUsers(room string) {
	c.out.EmitToRoom(room, EventTypingUsers, respond.TypingUsersRespond{Room: room, Users: c.rooms.TypingList(room)})
}

// emitTypingElsewhere 向 skip 以外受影响的房间广播最新输入列表
func (c *Coordinator) emitTypingElsewhere(rooms []string, skip string) {
	for _, room := range rooms {
		if room != skip {
			c.emitTypingUsers(room)
		}
	}
}

func presence(s model.Session) respond.UserPresenceRespond {
	return respond.UserPresenceRespond{Username: s.Username, ID: s.ID, Room: s.Room}
}
