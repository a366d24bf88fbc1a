package request

import "room_chat_server/internal/model"

// SendMessageRequest 房间消息，room 为空时使用会话所在房间
type SendMessageRequest struct {
	Room    string      `json:"room"`
	Message string      `json:"message"`
	File    *model.File `json:"file"`
}

// PrivateMessageRequest 私聊消息，To 为目标连接 ID
type PrivateMessageRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// MessageReadRequest 已读回执
// 客户端附带的 room 字段被忽略，回执总是发往消息自身所在的房间
type MessageReadRequest struct {
	MessageID model.MessageID `json:"messageId"`
}
