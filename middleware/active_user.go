package middleware

import (
	"errors"
	"net/http"

	"roleplay/database"
	"roleplay/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const ctxUserKey = "currentUser"

// ActiveUser 需在 JWTAuth 之后使用：令牌对应的用户必须存在且处于启用状态
func ActiveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		err := database.DB.WithContext(c.Request.Context()).
			Where("id = ?", GetCurrentUserID(c)).
			First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Msg("加载当前用户失败")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Internal server error",
			})
			return
		}
		if err != nil || !user.IsActive {
			abortUnauthorized(c, "Could not validate credentials")
			return
		}
		c.Set(ctxUserKey, &user)
		c.Next()
	}
}

// GetCurrentUser 获取 ActiveUser 加载的用户
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
