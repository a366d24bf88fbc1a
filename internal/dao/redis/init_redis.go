// Package redis 基于 Redis 的消息存储
// 每个房间一个有序集合（score 为毫秒时间戳），消息体以 JSON 单独存放
package redis

import (
	"context"

	"room_chat_server/internal/config"
	"room_chat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open 创建客户端并确认连接可用
func Open(ctx context.Context, cfg config.RedisConfig) (*MessageRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.Db,
		PoolSize:     50,
		MinIdleConns: 4,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis ping %s", cfg.Addr)
	}
	zap.L().Info("redis connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.Db))
	return NewMessageRepository(client, cfg.KeyPrefix), nil
}
