package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roleplay/config"
	"roleplay/database"
	"roleplay/middleware"
	"roleplay/models"
	"roleplay/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}
}

// setupTestDB 内存 sqlite 替换 database.DB
func setupTestDB(t *testing.T) func() {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := database.Open(&config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)},
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gdb))
	require.NoError(t, database.SeedDefaultRoles(gdb))

	cfg := testConfig()
	config.GlobalConfig = cfg
	middleware.InitJWT(cfg)

	oldDB := database.DB
	database.DB = gdb
	return func() {
		database.DB = oldDB
		config.GlobalConfig = nil
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// setupMockDB sqlmock 替换 database.DB，用于注入数据库错误
func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func setUserIDMiddleware(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "x", IsActive: true}
	require.NoError(t, database.DB.Create(&user).Error)
	return &user
}

func findRole(t *testing.T, name string) *models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, database.DB.Where("name = ?", name).First(&role).Error)
	return &role
}

type fakeCompleter struct {
	result service.Completion
}

func (f *fakeCompleter) Complete(context.Context, []service.Turn) service.Completion {
	return f.result
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
