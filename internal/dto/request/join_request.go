package request

import (
	"bytes"
	"encoding/json"
)

// JoinRequest 加入房间请求
// 兼容旧客户端：payload 也可以是纯字符串用户名
type JoinRequest struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// UnmarshalJSON 把 "alice" 和 {"username":"alice","room":"tech"} 统一为同一结构
func (r *JoinRequest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*r = JoinRequest{}
		return json.Unmarshal(data, &r.Username)
	}
	type plain JoinRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = JoinRequest(p)
	return nil
}
