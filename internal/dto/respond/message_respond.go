package respond

import "room_chat_server/internal/model"

// MessageReadRespond 已读回执广播
type MessageReadRespond struct {
	MessageID model.MessageID `json:"messageId"`
	ReaderID  string          `json:"readerId"`
	Room      string          `json:"room"`
}

// ErrorRespond 发给单个连接的错误事件
type ErrorRespond struct {
	Message string `json:"message"`
}

// MessageListRespond 分页历史查询结果
type MessageListRespond struct {
	Room     string          `json:"room"`
	Messages []model.Message `json:"messages"`
	HasMore  bool            `json:"hasMore"`
}
