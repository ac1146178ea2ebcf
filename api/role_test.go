package api

import (
	"net/http"
	"testing"

	"roleplay/database"
	"roleplay/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoleRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewRoleHandler()
	router.POST("/roles", setUserIDMiddleware("u-1"), h.Create)
	router.GET("/roles", setUserIDMiddleware("u-1"), h.List)
	router.GET("/roles/:id", setUserIDMiddleware("u-1"), h.Get)
	return router
}

func TestRoleHandler_Create(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()
	router := newRoleRouter()

	w := doJSON(router, "POST", "/roles", map[string]interface{}{
		"name":              "Sherlock",
		"description":       "Consulting detective",
		"system_prompt":     "You are Sherlock Holmes.",
		"few_shot_examples": []map[string]string{{"user": "Who are you?", "ai": "A detective."}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Sherlock", data["name"])
	assert.Equal(t, true, data["is_active"])
	assert.Len(t, data["few_shot_examples"], 1)

	// 重名
	w = doJSON(router, "POST", "/roles", map[string]interface{}{
		"name": "Sherlock", "description": "d", "system_prompt": "p",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 缺少 system_prompt
	w = doJSON(router, "POST", "/roles", map[string]interface{}{"name": "Watson", "description": "d"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 显式创建停用角色
	w = doJSON(router, "POST", "/roles", map[string]interface{}{
		"name": "Moriarty", "description": "d", "system_prompt": "p", "is_active": false,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var moriarty models.Role
	require.NoError(t, database.DB.Where("name = ?", "Moriarty").First(&moriarty).Error)
	assert.False(t, moriarty.IsActive)
}

func TestRoleHandler_ListAndGet(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()
	router := newRoleRouter()

	spider := findRole(t, "Spider-Man")
	trainer := findRole(t, "Girlfriend Trainer")
	require.NoError(t, database.DB.Model(trainer).Update("is_active", false).Error)

	w := doJSON(router, "GET", "/roles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeResponse(t, w)["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "Spider-Man", list[0].(map[string]interface{})["name"])

	w = doJSON(router, "GET", "/roles/"+spider.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, spider.SystemPrompt, decodeResponse(t, w)["data"].(map[string]interface{})["system_prompt"])

	w = doJSON(router, "GET", "/roles/"+trainer.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Role not found or inactive", decodeResponse(t, w)["message"])

	w = doJSON(router, "GET", "/roles/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
