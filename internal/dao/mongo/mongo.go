// Package mongo MongoDB 消息存储（默认持久化驱动）
package mongo

import (
	"context"
	"errors"
	"time"

	"room_chat_server/internal/config"
	"room_chat_server/internal/model"
	"room_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MessageRepository 每条消息一个文档，以 id 字段为业务主键
type MessageRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Open 连接 MongoDB 并确保索引存在
func Open(ctx context.Context, cfg config.MongoConfig) (*MessageRepository, error) {
	if cfg.URI == "" {
		return nil, errorx.New(errorx.CodeDBError, "mongo uri is required")
	}
	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(5 * time.Second)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(cfg.MinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeDBError, "mongo connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errorx.Wrap(err, errorx.CodeDBError, "mongo ping")
	}

	repo := &MessageRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	zap.L().Info("mongo connected", zap.String("database", cfg.Database), zap.String("collection", cfg.Collection))
	return repo, nil
}

func (r *MessageRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "room", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return errorx.Wrap(err, errorx.CodeDBError, "mongo create indexes")
	}
	return nil
}

// Upsert 以 id 为键整体覆盖文档
func (r *MessageRepository) Upsert(ctx context.Context, msg *model.Message) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"id": msg.ID},
		msg,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeDBError, "mongo upsert message %s", msg.ID)
	}
	return nil
}

// FindBefore 按时间倒序返回至多 limit 条
func (r *MessageRepository) FindBefore(ctx context.Context, room string, before *time.Time, limit int) ([]model.Message, error) {
	filter := bson.M{"room": room}
	if before != nil {
		filter["timestamp"] = bson.M{"$lt": *before}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "id", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeDBError, "mongo find room %s", room)
	}
	defer cursor.Close(ctx)

	messages := make([]model.Message, 0, limit)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeDBError, "mongo decode room %s", room)
	}
	for i := range messages {
		if messages[i].ReadBy == nil {
			messages[i].ReadBy = []string{}
		}
	}
	return messages, nil
}

// Close 断开连接
func (r *MessageRepository) Close(ctx context.Context) error {
	if err := r.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return errorx.Wrap(err, errorx.CodeDBError, "mongo disconnect")
	}
	return nil
}
