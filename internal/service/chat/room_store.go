package chat

import (
	"sort"
	"time"

	"room_chat_server/internal/model"
	"room_chat_server/pkg/constants"
)

type typingEntry struct {
	connID   string
	username string
}

// roomState 单个房间的状态：有界历史 + 正在输入的用户
type roomState struct {
	history []*model.Message
	typing  []typingEntry
}

// RoomStore 房间状态存储
// 房间首次被引用时惰性创建，进程生命周期内不销毁
type RoomStore struct {
	rooms        map[string]*roomState
	index        *MessageIndex
	historyLimit int
}

// NewRoomStore 创建房间存储，historyLimit <= 0 时使用默认值
func NewRoomStore(historyLimit int, index *MessageIndex) *RoomStore {
	if historyLimit <= 0 {
		historyLimit = constants.DEFAULT_HISTORY_LIMIT
	}
	return &RoomStore{
		rooms:        make(map[string]*roomState),
		index:        index,
		historyLimit: historyLimit,
	}
}

// Ensure 幂等地初始化房间
func (s *RoomStore) Ensure(room string) {
	s.state(room)
}

func (s *RoomStore) state(room string) *roomState {
	st, ok := s.rooms[room]
	if !ok {
		st = &roomState{}
		s.rooms[room] = st
	}
	return st
}

// AppendMessage 追加消息并写入索引
// 超过上限时淘汰最旧的一条，并在同一步骤中删除其索引项（严格 FIFO）
func (s *RoomStore) AppendMessage(room string, msg *model.Message) {
	st := s.state(room)
	st.history = append(st.history, msg)
	s.index.Put(msg.ID, room, msg)

	for len(st.history) > s.historyLimit {
		removed := st.history[0]
		st.history[0] = nil
		st.history = st.history[1:]
		s.index.Remove(removed.ID)
	}
}

// filtered 返回严格早于 before 的历史；before 为 nil 时返回全部
func (s *RoomStore) filtered(room string, before *time.Time) []*model.Message {
	history := s.state(room).history
	if before == nil {
		return history
	}
	cursor := before.UnixMilli()
	pool := make([]*model.Message, 0, len(history))
	for _, m := range history {
		if m.Timestamp.UnixMilli() < cursor {
			pool = append(pool, m)
		}
	}
	return pool
}

// RecentMessages 返回游标之前的最近 limit 条消息，按时间升序
func (s *RoomStore) RecentMessages(room string, limit int, before *time.Time) []model.Message {
	pool := s.filtered(room, before)
	if limit < 0 {
		limit = 0
	}
	if len(pool) > limit {
		pool = pool[len(pool)-limit:]
	}
	out := make([]model.Message, 0, len(pool))
	for _, m := range pool {
		out = append(out, m.Clone())
	}
	return out
}

// HasMoreBefore 同样的过滤条件下，是否还有比返回结果更早的消息
func (s *RoomStore) HasMoreBefore(room string, limit int, before *time.Time) bool {
	return len(s.filtered(room, before)) > limit
}

// HistoryLen 房间内的历史条数
func (s *RoomStore) HistoryLen(room string) int {
	return len(s.state(room).history)
}

// SetTyping 标记连接正在输入；已存在时更新用户名
func (s *RoomStore) SetTyping(room, connID, username string) {
	st := s.state(room)
	for i := range st.typing {
		if st.typing[i].connID == connID {
			st.typing[i].username = username
			return
		}
	}
	st.typing = append(st.typing, typingEntry{connID: connID, username: username})
}

// ClearTyping 清除连接的输入状态
func (s *RoomStore) ClearTyping(room, connID string) {
	st := s.state(room)
	for i := range st.typing {
		if st.typing[i].connID == connID {
			st.typing = append(st.typing[:i], st.typing[i+1:]...)
			return
		}
	}
}

// ClearTypingAll 清除连接在所有房间的输入状态，返回受影响的房间（按名称排序）
func (s *RoomStore) ClearTypingAll(connID string) []string {
	var affected []string
	for room, st := range s.rooms {
		for i := range st.typing {
			if st.typing[i].connID == connID {
				st.typing = append(st.typing[:i], st.typing[i+1:]...)
				affected = append(affected, room)
				break
			}
		}
	}
	sort.Strings(affected)
	return affected
}

// TypingList 正在输入的用户名列表
func (s *RoomStore) TypingList(room string) []string {
	st := s.state(room)
	users := make([]string, 0, len(st.typing))
	for _, e := range st.typing {
		users = append(users, e.username)
	}
	return users
}
