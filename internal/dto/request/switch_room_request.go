package request

import (
	"bytes"
	"encoding/json"
)

// SwitchRoomRequest 切换房间请求，payload 可以是 {"room":"tech"} 或 "tech"
type SwitchRoomRequest struct {
	Room string `json:"room"`
}

func (r *SwitchRoomRequest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*r = SwitchRoomRequest{}
		return json.Unmarshal(data, &r.Room)
	}
	type plain SwitchRoomRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = SwitchRoomRequest(p)
	return nil
}
