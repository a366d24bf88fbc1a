package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"room_chat_server/internal/dto/request"
	"room_chat_server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inlineTasks 同步执行任务，便于断言
type inlineTasks struct{}

func (inlineTasks) Submit(task func()) bool {
	task()
	return true
}

type fakeRepo struct {
	mu       sync.Mutex
	stored   map[model.MessageID]model.Message
	history  []model.Message // FindBefore 的返回值（时间倒序）
	failWith error
	queries  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stored: make(map[model.MessageID]model.Message)}
}

func (r *fakeRepo) Upsert(_ context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.stored[msg.ID] = *msg
	return nil
}

func (r *fakeRepo) FindBefore(_ context.Context, room string, before *time.Time, limit int) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]model.Message, 0)
	for _, m := range r.history {
		if m.Room != room || (before != nil && !m.Timestamp.Before(*before)) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeSink struct {
	mu        sync.Mutex
	published []model.MessageID
}

func (s *fakeSink) Publish(_ context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, msg.ID)
	return nil
}

func TestPersistenceBridge_MirrorWriteOnSendAndRead(t *testing.T) {
	repo := newFakeRepo()
	sink := &fakeSink{}
	bridge := NewPersistenceBridge(repo, inlineTasks{}, time.Second, sink)
	c, tr := newTestCoordinator(t, Options{}, bridge)

	c.Join("c1", request.JoinRequest{Username: "alice"})
	c.Join("c2", request.JoinRequest{Username: "bob"})
	c.SendMessage("c1", request.SendMessageRequest{Message: "persist me"})

	msg := tr.events("c1", EventReceiveMessage)[0].(model.Message)
	stored, ok := repo.stored[msg.ID]
	require.True(t, ok)
	assert.Equal(t, "persist me", stored.Message)
	assert.Empty(t, stored.ReadBy)

	c.MessageRead("c2", request.MessageReadRequest{MessageID: msg.ID})
	assert.Equal(t, []string{"c2"}, repo.stored[msg.ID].ReadBy)
	assert.Equal(t, []model.MessageID{msg.ID}, sink.published, "read receipts only update the store")
}

func TestPersistenceBridge_MirrorStoreSkipsSinks(t *testing.T) {
	sink := &fakeSink{}
	NewPersistenceBridge(nil, inlineTasks{}, time.Second, sink).MirrorStore(newMessage(1, "general"))
	assert.Empty(t, sink.published)

	repo := newFakeRepo()
	NewPersistenceBridge(repo, inlineTasks{}, time.Second, sink).MirrorStore(newMessage(2, "general"))
	assert.Contains(t, repo.stored, model.MessageID(2))
	assert.Empty(t, sink.published)
}

func TestPersistenceBridge_WriteFailureDoesNotReachSender(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("store down")
	c, tr := newTestCoordinator(t, Options{}, NewPersistenceBridge(repo, inlineTasks{}, time.Second))

	c.Join("c1", request.JoinRequest{Username: "alice"})
	c.SendMessage("c1", request.SendMessageRequest{Message: "still delivered"})

	assert.Len(t, tr.events("c1", EventReceiveMessage), 1)
	assert.Empty(t, tr.events("c1", EventError))
}

func TestPersistenceBridge_BackfillWhenMemoryEmpty(t *testing.T) {
	repo := newFakeRepo()
	for i := 5; i >= 1; i-- { // 时间倒序
		m := newMessage(i, "archive")
		repo.history = append(repo.history, *m)
	}
	c, _ := newTestCoordinator(t, Options{}, NewPersistenceBridge(repo, inlineTasks{}, time.Second))

	page := c.ListMessages(context.Background(), "archive", "", 3)
	require.Len(t, page.Messages, 3)
	assert.EqualValues(t, 3, page.Messages[0].ID, "backfill is returned in ascending order")
	assert.EqualValues(t, 5, page.Messages[2].ID)
	assert.True(t, page.HasMore)

	cursor := page.Messages[0].Timestamp.Format(time.RFC3339Nano)
	page = c.ListMessages(context.Background(), "archive", cursor, 3)
	require.Len(t, page.Messages, 2)
	assert.False(t, page.HasMore)
}

func TestPersistenceBridge_NotConsultedWhenMemoryHasHistory(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestCoordinator(t, Options{}, NewPersistenceBridge(repo, inlineTasks{}, time.Second))
	c.Join("c1", request.JoinRequest{Username: "alice"})
	c.SendMessage("c1", request.SendMessageRequest{Message: "hot"})

	page := c.ListMessages(context.Background(), "general", "", 25)
	assert.Len(t, page.Messages, 1)
	assert.Zero(t, repo.queries)
}

func TestPersistenceBridge_BackfillFailureDegradesToEmpty(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("timeout")
	c, _ := newTestCoordinator(t, Options{}, NewPersistenceBridge(repo, inlineTasks{}, time.Second))

	page := c.ListMessages(context.Background(), "general", "", 25)
	assert.NotNil(t, page.Messages)
	assert.Empty(t, page.Messages)
	assert.False(t, page.HasMore)
}

func TestPersistenceBridge_NilIsInMemoryMode(t *testing.T) {
	var bridge *PersistenceBridge
	assert.False(t, bridge.Enabled())
	bridge.MirrorWrite(newMessage(1, "general"))
	assert.Nil(t, bridge.Backfill(context.Background(), "general", nil, 10))
}
