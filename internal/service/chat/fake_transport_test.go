package chat

import (
	"sort"
	"sync"
)

type delivery struct {
	Event   string
	Payload any
}

// fakeTransport 记录每个连接收到的事件，行为与网关 Hub 的房间语义一致
type fakeTransport struct {
	mu      sync.Mutex
	rooms   map[string]map[string]bool
	inboxes map[string][]delivery
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		rooms:   make(map[string]map[string]bool),
		inboxes: make(map[string][]delivery),
	}
}

func (f *fakeTransport) JoinRoom(connID, room string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rooms[room] == nil {
		f.rooms[room] = make(map[string]bool)
	}
	f.rooms[room][connID] = true
}

func (f *fakeTransport) LeaveRoom(connID, room string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms[room], connID)
}

func (f *fakeTransport) EmitToRoom(room, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := make([]string, 0, len(f.rooms[room]))
	for id := range f.rooms[room] {
		members = append(members, id)
	}
	sort.Strings(members)
	for _, id := range members {
		f.inboxes[id] = append(f.inboxes[id], delivery{Event: event, Payload: payload})
	}
}

func (f *fakeTransport) EmitToConnection(connID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inboxes[connID] = append(f.inboxes[connID], delivery{Event: event, Payload: payload})
}

func (f *fakeTransport) members(room string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0)
	for id := range f.rooms[room] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// events 返回连接收到的指定事件
func (f *fakeTransport) events(connID, event string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []any
	for _, d := range f.inboxes[connID] {
		if d.Event == event {
			out = append(out, d.Payload)
		}
	}
	return out
}

func (f *fakeTransport) total(connID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inboxes[connID])
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inboxes = make(map[string][]delivery)
}

// counterIDs 递增 ID，测试中使用
type counterIDs struct {
	mu   sync.Mutex
	next int64
}

func (c *counterIDs) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return c.next
}
