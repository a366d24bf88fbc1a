// Package mq 把已提交的消息镜像到 Kafka，供下游离线消费
package mq

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"room_chat_server/internal/config"
	"room_chat_server/internal/model"
	"room_chat_server/pkg/errorx"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter kafka.Writer 的最小子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink 实现 chat.MessageSink
// 以房间名为 key，同一房间的消息落在同一分区，保持房间内顺序
type KafkaSink struct {
	writer messageWriter
	topic  string
}

// NewKafkaSink 按配置创建 writer；writer 是惰性连接的，此处不会访问 broker
func NewKafkaSink(cfg config.KafkaConfig) (*KafkaSink, error) {
	brokers := splitBrokers(cfg.HostPort)
	if len(brokers) == 0 {
		return nil, errorx.New(errorx.CodeMQError, "kafka brokers are required")
	}
	if cfg.ChatTopic == "" {
		return nil, errorx.New(errorx.CodeMQError, "kafka topic is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.ChatTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           timeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	zap.L().Info("kafka sink ready", zap.Strings("brokers", brokers), zap.String("topic", cfg.ChatTopic))
	return &KafkaSink{writer: w, topic: cfg.ChatTopic}, nil
}

// Publish 写入一条消息快照
func (s *KafkaSink) Publish(ctx context.Context, msg *model.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeMQError, "encode message %s", msg.ID)
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Room),
		Value: value,
		Time:  msg.Timestamp,
		Headers: []kafka.Header{
			{Key: "messageId", Value: []byte(msg.ID.String())},
		},
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeMQError, "kafka publish message %s to %s", msg.ID, s.topic)
	}
	return nil
}

// Close 刷出缓冲并关闭 writer
func (s *KafkaSink) Close(context.Context) error {
	if err := s.writer.Close(); err != nil {
		return errorx.Wrap(err, errorx.CodeMQError, "kafka close")
	}
	return nil
}

func splitBrokers(raw string) []string {
	brokers := make([]string, 0)
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
