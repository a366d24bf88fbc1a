// Package dao 按配置选择消息存储驱动
package dao

import (
	"context"

	"room_chat_server/internal/config"
	"room_chat_server/internal/dao/mongo"
	"room_chat_server/internal/dao/mysql"
	"room_chat_server/internal/dao/redis"
	"room_chat_server/internal/service/chat"
	"room_chat_server/pkg/errorx"
)

// 支持的持久化驱动
const (
	DriverNone  = ""
	DriverMongo = "mongo"
	DriverMySQL = "mysql"
	DriverRedis = "redis"
)

// Store 可关闭的消息存储
type Store interface {
	chat.MessageRepository
	Close(ctx context.Context) error
}

// OpenStore 按 persistenceConfig.driver 打开存储
// 未配置驱动时返回 (nil, nil)，表示纯内存模式
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		store Store
		err   error
	)
	// 各驱动返回具体指针类型，失败时不能直接赋给接口，否则得到非 nil 的接口值
	switch cfg.PersistenceConfig.Driver {
	case DriverNone:
		return nil, nil
	case DriverMongo:
		var repo *mongo.MessageRepository
		if repo, err = mongo.Open(ctx, cfg.MongoConfig); err == nil {
			store = repo
		}
	case DriverMySQL:
		var repo *mysql.MessageRepository
		if repo, err = mysql.Open(cfg.MysqlConfig); err == nil {
			store = repo
		}
	case DriverRedis:
		var repo *redis.MessageRepository
		if repo, err = redis.Open(ctx, cfg.RedisConfig); err == nil {
			store = repo
		}
	default:
		err = errorx.Newf(errorx.CodeInvalidParam, "unknown persistence driver %q", cfg.PersistenceConfig.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
