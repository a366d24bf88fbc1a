package mysql

import (
	"context"
	"time"

	"room_chat_server/internal/dao/mysql/internal"
	"room_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// messageRecord messages 表结构
// ReadBy 和 File 以 JSON 列保存
type messageRecord struct {
	ID        int64       `gorm:"primaryKey;autoIncrement:false"`
	Room      string      `gorm:"type:varchar(64);not null;index:idx_room_ts,priority:1"`
	Sender    string      `gorm:"type:varchar(128);not null"`
	SenderID  string      `gorm:"type:varchar(64)"`
	Message   string      `gorm:"type:text"`
	File      *model.File `gorm:"serializer:json;type:longtext"`
	Timestamp time.Time   `gorm:"type:datetime(3);not null;index:idx_room_ts,priority:2"`
	ReadBy    []string    `gorm:"serializer:json;type:text"`
	IsPrivate bool        `gorm:"not null;default:false"`
}

func (messageRecord) TableName() string {
	return "messages"
}

func toRecord(m *model.Message) *messageRecord {
	readBy := m.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	return &messageRecord{
		ID:        int64(m.ID),
		Room:      m.Room,
		Sender:    m.Sender,
		SenderID:  m.SenderID,
		Message:   m.Message,
		File:      m.File,
		Timestamp: m.Timestamp.UTC(),
		ReadBy:    readBy,
		IsPrivate: m.IsPrivate,
	}
}

func (r *messageRecord) toModel() model.Message {
	readBy := r.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	return model.Message{
		ID:        model.MessageID(r.ID),
		Room:      r.Room,
		Sender:    r.Sender,
		SenderID:  r.SenderID,
		Message:   r.Message,
		File:      r.File,
		Timestamp: r.Timestamp.UTC(),
		ReadBy:    readBy,
		IsPrivate: r.IsPrivate,
	}
}

// MessageRepository 实现 chat.MessageRepository
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Upsert 主键冲突时覆盖全部列
func (r *MessageRepository) Upsert(ctx context.Context, msg *model.Message) error {
	if err := upsertQuery(r.db.WithContext(ctx), toRecord(msg)).Error; err != nil {
		return internal.WrapDBErrorf(err, "upsert message id=%s", msg.ID)
	}
	return nil
}

// FindBefore 按时间倒序返回至多 limit 条
func (r *MessageRepository) FindBefore(ctx context.Context, room string, before *time.Time, limit int) ([]model.Message, error) {
	var records []messageRecord
	if err := findBeforeQuery(r.db.WithContext(ctx), room, before, limit).Find(&records).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "find messages room=%s", room)
	}
	messages := make([]model.Message, 0, len(records))
	for i := range records {
		messages = append(messages, records[i].toModel())
	}
	return messages, nil
}

// Close 关闭底层连接池
func (r *MessageRepository) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return internal.WrapDBError(err, "mysql get sql.DB")
	}
	return sqlDB.Close()
}

func upsertQuery(tx *gorm.DB, rec *messageRecord) *gorm.DB {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(rec)
}

func findBeforeQuery(tx *gorm.DB, room string, before *time.Time, limit int) *gorm.DB {
	q := tx.Model(&messageRecord{}).Where("room = ?", room)
	if before != nil {
		q = q.Where("timestamp < ?", before.UTC())
	}
	return q.Order("timestamp DESC").Order("id DESC").Limit(limit)
}
