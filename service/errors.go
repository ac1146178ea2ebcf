package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrUsernameTaken     = errors.New("Username already registered")
	ErrEmailTaken        = errors.New("Email already registered")
	ErrRoleNameTaken     = errors.New("Role name already exists")
	ErrInvalidLogin      = errors.New("Incorrect username or password")
	ErrInactiveUser      = errors.New("Inactive user")
	ErrRoleNotFound      = errors.New("Role not found or inactive")
	ErrChatNotFound      = errors.New("Chat not found or unauthorized")
	ErrRoleMissing       = errors.New("Associated role not found")
	ErrNoChatsDeleted    = errors.New("No chats found for deletion or unauthorized")
	ErrUnsupportedExport = errors.New("unsupported export format")
)

// isDuplicateKey 唯一索引冲突。TranslateError 覆盖不到的驱动按错误文本兜底
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
