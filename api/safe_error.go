package api

import (
	"context"
	"errors"

	"roleplay/config"
	"roleplay/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// StatusClientClosedRequest 客户端在响应前断开连接
const StatusClientClosedRequest = 499

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情，避免信息泄露
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

// writeServiceError 将 service 层错误映射为 HTTP 响应
func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrChatNotFound),
		errors.Is(err, service.ErrNoChatsDeleted):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrRoleNameTaken),
		errors.Is(err, service.ErrLockTimeout):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrRoleMissing):
		InternalError(c, err.Error())
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(StatusClientClosedRequest)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}
