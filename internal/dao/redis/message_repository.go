package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"room_chat_server/internal/model"
	"room_chat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MessageRepository 实现 chat.MessageRepository
type MessageRepository struct {
	client *redis.Client
	prefix string
}

func NewMessageRepository(client *redis.Client, prefix string) *MessageRepository {
	if prefix == "" {
		prefix = "chat"
	}
	return &MessageRepository{client: client, prefix: prefix}
}

func (r *MessageRepository) roomKey(room string) string {
	return r.prefix + ":room:" + room + ":messages"
}

func (r *MessageRepository) messageKey(id string) string {
	return r.prefix + ":message:" + id
}

// Upsert 消息体和房间索引在同一事务中写入
func (r *MessageRepository) Upsert(ctx context.Context, msg *model.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "encode message %s", msg.ID)
	}
	id := msg.ID.String()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.messageKey(id), body, 0)
		pipe.ZAdd(ctx, r.roomKey(msg.Room), redis.Z{
			Score:  float64(msg.Timestamp.UnixMilli()),
			Member: id,
		})
		return nil
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis upsert message %s", id)
	}
	return nil
}

// FindBefore 按时间倒序返回至多 limit 条
func (r *MessageRepository) FindBefore(ctx context.Context, room string, before *time.Time, limit int) ([]model.Message, error) {
	ids, err := r.client.ZRevRangeByScore(ctx, r.roomKey(room), &redis.ZRangeBy{
		Max:   scoreBefore(before),
		Min:   "-inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis range room %s", room)
	}
	if len(ids) == 0 {
		return []model.Message{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.messageKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis mget room %s", room)
	}
	return decodeMessages(values), nil
}

// Close 关闭客户端
func (r *MessageRepository) Close(context.Context) error {
	return r.client.Close()
}

// scoreBefore 严格小于游标："(" 前缀表示开区间
func scoreBefore(before *time.Time) string {
	if before == nil {
		return "+inf"
	}
	return "(" + strconv.FormatInt(before.UnixMilli(), 10)
}

// decodeMessages 跳过已被删除或无法解析的条目
func decodeMessages(values []any) []model.Message {
	messages := make([]model.Message, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var msg model.Message
		if err := json.Unmarshal([]byte(s), &msg); err != nil {
			zap.L().Warn("skip undecodable message", zap.Error(err))
			continue
		}
		if msg.ReadBy == nil {
			msg.ReadBy = []string{}
		}
		messages = append(messages, msg)
	}
	return messages
}
