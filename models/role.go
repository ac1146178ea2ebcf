package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FewShotExample 角色的示例对话，两侧均可缺省
type FewShotExample struct {
	User string `json:"user,omitempty"`
	AI   string `json:"ai,omitempty"`
}

// Role AI 角色（人设）
type Role struct {
	ID              string                               `json:"id" gorm:"primaryKey;size:36"`
	Name            string                               `json:"name" gorm:"uniqueIndex;size:50;not null"`
	Description     string                               `json:"description" gorm:"type:text;not null"`
	SystemPrompt    string                               `json:"system_prompt" gorm:"type:text;not null"`
	FewShotExamples datatypes.JSONSlice[FewShotExample] `json:"few_shot_examples"`
	IsActive        bool                                 `json:"is_active" gorm:"not null;index"` // 不设 default，避免 false 被 gorm 当作零值覆盖
	CreatedAt       time.Time                            `json:"created_at"`
	UpdatedAt       time.Time                            `json:"updated_at"`
}

// TableName 设置表名
func (Role) TableName() string {
	return "roles"
}

// BeforeCreate 生成 UUID 主键
func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Greeting 新会话 position 0 的开场白
func (r Role) Greeting() string {
	return fmt.Sprintf("Hello, I am %s. How can I help you today?", r.Name)
}

// DefaultChatTitle 未指定标题时的会话标题
func (r Role) DefaultChatTitle() string {
	return "Chat with " + r.Name
}
