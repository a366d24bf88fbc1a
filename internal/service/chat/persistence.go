package chat

import (
	"context"
	"time"

	"room_chat_server/internal/model"

	"go.uber.org/zap"
)

// MessageRepository 持久化存储接口（MongoDB / MySQL / Redis 实现）
type MessageRepository interface {
	// Upsert 以消息 ID 为键插入或覆盖
	Upsert(ctx context.Context, msg *model.Message) error
	// FindBefore 按时间倒序查询房间消息，before 非空时只取严格更早的消息
	FindBefore(ctx context.Context, room string, before *time.Time, limit int) ([]model.Message, error)
}

// MessageSink 只写的镜像目标（如 Kafka）
type MessageSink interface {
	Publish(ctx context.Context, msg *model.Message) error
}

// TaskSubmitter 异步任务提交，队列满时可以丢弃任务
type TaskSubmitter interface {
	Submit(task func()) bool
}

// PersistenceBridge 内存历史与持久化存储之间的桥
// 内存是近期历史的唯一事实来源；存储是最终一致的镜像，只在内存为空时被读取
type PersistenceBridge struct {
	repo    MessageRepository
	sinks   []MessageSink
	tasks   TaskSubmitter
	timeout time.Duration
}

// NewPersistenceBridge repo 为 nil 时表示纯内存模式
func NewPersistenceBridge(repo MessageRepository, tasks TaskSubmitter, timeout time.Duration, sinks ...MessageSink) *PersistenceBridge {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PersistenceBridge{
		repo:    repo,
		sinks:   sinks,
		tasks:   tasks,
		timeout: timeout,
	}
}

// Enabled 是否配置了持久化存储
func (b *PersistenceBridge) Enabled() bool {
	return b != nil && b.repo != nil
}

// MirrorWrite 尽力而为地把消息镜像到存储和所有 sink
// 在调用方的当前状态上拍快照后异步写入，错误只记录日志
func (b *PersistenceBridge) MirrorWrite(msg *model.Message) {
	if b == nil || (b.repo == nil && len(b.sinks) == 0) {
		return
	}
	snapshot := msg.Clone()
	b.submit(snapshot.ID, func() { b.mirror(&snapshot) })
}

// MirrorStore 只把消息状态（如已读列表）同步到存储，不再发布到 sink
func (b *PersistenceBridge) MirrorStore(msg *model.Message) {
	if !b.Enabled() {
		return
	}
	snapshot := msg.Clone()
	b.submit(snapshot.ID, func() { b.upsert(&snapshot) })
}

func (b *PersistenceBridge) submit(id model.MessageID, task func()) {
	if b.tasks == nil {
		go task()
		return
	}
	if !b.tasks.Submit(task) {
		zap.L().Warn("mirror write dropped", zap.Stringer("messageId", id))
	}
}

func (b *PersistenceBridge) upsert(msg *model.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	if err := b.repo.Upsert(ctx, msg); err != nil {
		zap.L().Error("error saving message to store", zap.Stringer("messageId", msg.ID), zap.Error(err))
	}
}

func (b *PersistenceBridge) mirror(msg *model.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if b.repo != nil {
		b.upsert(msg)
	}
	for _, sink := range b.sinks {
		if err := sink.Publish(ctx, msg); err != nil {
			zap.L().Error("error publishing message to sink", zap.Stringer("messageId", msg.ID), zap.Error(err))
		}
	}
}

// Backfill 从存储读取历史，结果按时间升序返回
// 存储未配置或查询失败时返回空结果，不向调用方抛出错误
func (b *PersistenceBridge) Backfill(ctx context.Context, room string, before *time.Time, limit int) []model.Message {
	if !b.Enabled() || limit <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	messages, err := b.repo.FindBefore(ctx, room, before, limit)
	if err != nil {
		zap.L().Error("error fetching messages from store", zap.String("room", room), zap.Error(err))
		return nil
	}
	// 存储按时间倒序返回
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages
}
