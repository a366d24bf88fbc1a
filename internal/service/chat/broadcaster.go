package chat

// 出站事件名
const (
	EventRoomList       = "room_list"
	EventRoomJoined     = "room_joined"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventUserList       = "user_list"
	EventTypingUsers    = "typing_users"
	EventReceiveMessage = "receive_message"
	EventPrivateMessage = "private_message"
	EventMessageRead    = "message_read"
	EventError          = "error"
)

// Broadcaster 传输层的扇出抽象
// 投递是 fire-and-forget：没有缓冲重试，目标已断开时事件被丢弃
type Broadcaster interface {
	// JoinRoom 把连接加入传输层房间
	JoinRoom(connID, room string)
	// LeaveRoom 把连接移出传输层房间
	LeaveRoom(connID, room string)
	// EmitToRoom 向房间内所有连接发送事件
	EmitToRoom(room, event string, payload any)
	// EmitToConnection 向单个连接发送事件
	EmitToConnection(connID, event string, payload any)
}
