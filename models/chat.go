package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat 用户与某个角色的一次会话
type Chat struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index"`
	RoleID    string    `json:"role_id" gorm:"size:36;not null;index"`
	Title     string    `json:"title" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Chat) TableName() string {
	return "chats"
}

// BeforeCreate 生成 UUID 主键
func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
