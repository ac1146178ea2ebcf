package service

import (
	"fmt"
	"strings"
	"testing"

	"roleplay/config"
	"roleplay/database"
	"roleplay/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB 每个测试独立的内存 sqlite，已迁移并写入默认角色
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := database.Open(&config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)},
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gdb))
	require.NoError(t, database.SeedDefaultRoles(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func roleByName(t *testing.T, db *gorm.DB, name string) *models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Where("name = ?", name).First(&role).Error)
	return &role
}

// assertGapless 会话消息 position 为 0..n-1 且 0 号为 AI 开场白
func assertGapless(t *testing.T, db *gorm.DB, chatID string) []models.Message {
	t.Helper()
	msgs, err := chatMessages(db, chatID)
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	require.Equal(t, models.SenderAI, msgs[0].SenderType)
	for i, m := range msgs {
		require.Equal(t, i, m.Position)
	}
	return msgs
}
