package respond

import "room_chat_server/internal/model"

// RoomJoinedRespond 加入/切换房间后发给请求方的房间快照
type RoomJoinedRespond struct {
	Room     string          `json:"room"`
	Users    []model.Session `json:"users"`
	Messages []model.Message `json:"messages"`
	HasMore  bool            `json:"hasMore"`
}

// UserPresenceRespond user_joined / user_left
type UserPresenceRespond struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	Room     string `json:"room"`
}

// UserListRespond 房间在线列表
type UserListRespond struct {
	Room  string          `json:"room"`
	Users []model.Session `json:"users"`
}

// TypingUsersRespond 房间内正在输入的用户名
type TypingUsersRespond struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// RoomListRespond 预设房间与默认房间
type RoomListRespond struct {
	Rooms       []string `json:"rooms"`
	DefaultRoom string   `json:"defaultRoom"`
}
