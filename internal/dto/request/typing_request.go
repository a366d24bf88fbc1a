package request

import (
	"bytes"
	"encoding/json"
)

// TypingRequest 输入状态
// payload 为纯布尔值时表示"在当前房间输入"
type TypingRequest struct {
	IsTyping bool   `json:"isTyping"`
	Room     string `json:"room"`
}

func (r *TypingRequest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
		*r = TypingRequest{IsTyping: data[0] == 't'}
		return nil
	}
	type plain TypingRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = TypingRequest(p)
	return nil
}
