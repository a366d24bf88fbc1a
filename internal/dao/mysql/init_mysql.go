// Package mysql 基于 GORM 的 MySQL 消息存储
package mysql

import (
	"fmt"

	"room_chat_server/internal/config"
	"room_chat_server/internal/dao/mysql/internal"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN 由配置拼接 MySQL 连接串
// 格式：user:password@tcp(host:port)/database?params
func DSN(cfg config.MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DatabaseName,
	)
}

// Open 建立连接并迁移消息表
// 连接失败返回错误，由调用方决定是否降级为纯内存模式
func Open(cfg config.MysqlConfig) (*MessageRepository, error) {
	db, err := gorm.Open(mysqldriver.Open(DSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, internal.WrapDBError(err, "mysql connect")
	}
	if err := db.AutoMigrate(&messageRecord{}); err != nil {
		return nil, internal.WrapDBError(err, "mysql migrate messages")
	}
	zap.L().Info("mysql connected", zap.String("host", cfg.Host), zap.String("database", cfg.DatabaseName))
	return NewMessageRepository(db), nil
}
