package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// SenderUser 用户发送的消息
	SenderUser = "user"
	// SenderAI AI 回复（含开场白）
	SenderAI = "ai"
)

// Message 会话中的一条消息。Position 在同一会话内从 0 开始连续递增，
// (chat_id, position) 唯一索引把并发追加的冲突暴露为主键冲突
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	ChatID     string    `json:"chat_id" gorm:"size:36;not null;uniqueIndex:idx_messages_chat_position,priority:1"`
	SenderType string    `json:"sender_type" gorm:"size:10;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	Position   int       `json:"position" gorm:"not null;uniqueIndex:idx_messages_chat_position,priority:2"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 设置表名
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate 生成 UUID 主键
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
