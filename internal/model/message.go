// Package model 定义聊天核心的数据模型
// 本文件定义消息模型，既用于内存历史，也作为持久化记录的形状
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// MessageID 消息唯一标识（雪花 ID）
// JSON 中编码为字符串，避免 JavaScript 精度丢失；解码时同时接受字符串和数字
type MessageID int64

// MarshalJSON 输出带引号的十进制字符串
func (id MessageID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(id), 10))), nil
}

// UnmarshalJSON 接受 "123" 或 123
func (id *MessageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = MessageID(v)
	return nil
}

// String 十进制表示
func (id MessageID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// File 内联文件附件
type File struct {
	Name string `json:"name" bson:"name"`
	Type string `json:"type" bson:"type"` // MIME 类型
	Data string `json:"data" bson:"data"` // 内联数据（通常为 data URL / base64）
}

// Message 聊天消息
// 除 ReadBy 外创建后不可变；ReadBy 只在已读回执时追加
type Message struct {
	ID        MessageID `json:"id" bson:"id"`
	Room      string    `json:"room" bson:"room"`
	Sender    string    `json:"sender" bson:"sender"`
	SenderID  string    `json:"senderId" bson:"senderId"`
	Message   string    `json:"message,omitempty" bson:"message,omitempty"`
	File      *File     `json:"file,omitempty" bson:"file,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	ReadBy    []string  `json:"readBy" bson:"readBy"`
	IsPrivate bool      `json:"isPrivate" bson:"isPrivate"`
}

// HasReader 判断连接是否已记录为读者
func (m *Message) HasReader(connID string) bool {
	for _, id := range m.ReadBy {
		if id == connID {
			return true
		}
	}
	return false
}

// Clone 返回一份独立副本，ReadBy 与 File 不与原消息共享
func (m *Message) Clone() Message {
	c := *m
	c.ReadBy = append([]string{}, m.ReadBy...)
	if m.File != nil {
		f := *m.File
		c.File = &f
	}
	return c
}
