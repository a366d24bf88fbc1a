package websocket

import (
	"encoding/json"

	"room_chat_server/internal/dto/request"

	"go.uber.org/zap"
)

// 入站事件名
const (
	EventUserJoin       = "user_join"
	EventSwitchRoom     = "switch_room"
	EventSendMessage    = "send_message"
	EventTyping         = "typing"
	EventPrivateMessage = "private_message"
	EventMessageRead    = "message_read"
)

// EventHandler 入站事件的处理方，由 chat.Coordinator 实现
type EventHandler interface {
	Connect(connID string)
	Join(connID string, req request.JoinRequest)
	SwitchRoom(connID string, req request.SwitchRoomRequest)
	SendMessage(connID string, req request.SendMessageRequest)
	Typing(connID string, req request.TypingRequest)
	PrivateMessage(connID string, req request.PrivateMessageRequest)
	MessageRead(connID string, req request.MessageReadRequest)
	Disconnect(connID string)
}

// inbound 入站帧 {"event": ..., "data": ...}
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Dispatch 解码一帧并交给对应的处理方法
// 格式错误或未知事件直接忽略，连接保持
func Dispatch(h EventHandler, connID string, raw []byte) {
	var frame inbound
	if err := json.Unmarshal(raw, &frame); err != nil {
		zap.L().Debug("malformed frame ignored", zap.String("connId", connID), zap.Error(err))
		return
	}
	data := frame.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	switch frame.Event {
	case EventUserJoin:
		var req request.JoinRequest
		if decode(connID, frame.Event, data, &req) {
			h.Join(connID, req)
		}
	case EventSwitchRoom:
		var req request.SwitchRoomRequest
		if decode(connID, frame.Event, data, &req) {
			h.SwitchRoom(connID, req)
		}
	case EventSendMessage:
		var req request.SendMessageRequest
		if decode(connID, frame.Event, data, &req) {
			h.SendMessage(connID, req)
		}
	case EventTyping:
		var req request.TypingRequest
		if decode(connID, frame.Event, data, &req) {
			h.Typing(connID, req)
		}
	case EventPrivateMessage:
		var req request.PrivateMessageRequest
		if decode(connID, frame.Event, data, &req) {
			h.PrivateMessage(connID, req)
		}
	case EventMessageRead:
		var req request.MessageReadRequest
		if decode(connID, frame.Event, data, &req) {
			h.MessageRead(connID, req)
		}
	default:
		zap.L().Debug("unknown event ignored", zap.String("connId", connID), zap.String("event", frame.Event))
	}
}

func decode(connID, event string, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		zap.L().Debug("malformed payload ignored",
			zap.String("connId", connID), zap.String("event", event), zap.Error(err))
		return false
	}
	return true
}
