package chat

import "room_chat_server/internal/model"

// IndexEntry 消息索引项：消息所在房间及消息本身
type IndexEntry struct {
	Room    string
	Message *model.Message
}

// MessageIndex 消息 ID -> (房间, 消息) 的全局索引，用于已读回执查找
// 只引用 RoomStore 中的消息，消息被淘汰时索引项同步删除
type MessageIndex struct {
	entries map[model.MessageID]IndexEntry
}

// NewMessageIndex 创建空索引
func NewMessageIndex() *MessageIndex {
	return &MessageIndex{entries: make(map[model.MessageID]IndexEntry)}
}

func (idx *MessageIndex) Put(id model.MessageID, room string, msg *model.Message) {
	idx.entries[id] = IndexEntry{Room: room, Message: msg}
}

func (idx *MessageIndex) Get(id model.MessageID) (IndexEntry, bool) {
	e, ok := idx.entries[id]
	return e, ok
}

func (idx *MessageIndex) Remove(id model.MessageID) {
	delete(idx.entries, id)
}

// Len 索引项数量
func (idx *MessageIndex) Len() int {
	return len(idx.entries)
}
