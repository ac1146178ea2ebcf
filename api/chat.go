package api

import (
	"errors"
	"fmt"
	"net/http"

	"roleplay/middleware"
	"roleplay/models"
	"roleplay/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ChatHandler 会话处理器
type ChatHandler struct {
	conversations *service.ConversationService
}

// NewChatHandler 创建会话处理器
func NewChatHandler(conversations *service.ConversationService) *ChatHandler {
	return &ChatHandler{conversations: conversations}
}

// CreateChatRequest 创建会话请求
type CreateChatRequest struct {
	RoleID string `json:"role_id" binding:"required"`
	Title  string `json:"title" binding:"max=255"`
}

// CreateChatResponse 新会话及其开场白
type CreateChatResponse struct {
	Chat     *models.Chat    `json:"chat"`
	Greeting *models.Message `json:"greeting"`
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// BulkDeleteRequest 批量删除请求
type BulkDeleteRequest struct {
	ChatIDs []string `json:"chat_ids" binding:"required,min=1"`
}

// Create 创建会话
// @Summary 创建会话
// @Description 与启用中的角色开始新会话，同时写入 position 0 的开场白
// @Tags 会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateChatRequest true "会话信息"
// @Success 201 {object} Response{data=CreateChatResponse}
// @Failure 404 {object} Response "角色不存在或已停用"
// @Router /api/v1/chats [post]
func (h *ChatHandler) Create(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	chat, greeting, err := h.conversations.CreateChat(c.Request.Context(), middleware.GetCurrentUserID(c), req.RoleID, req.Title)
	if err != nil {
		writeServiceError(c, err, "创建会话失败")
		return
	}
	Created(c, CreateChatResponse{Chat: chat, Greeting: greeting})
}

// List 当前用户的会话
// @Summary 会话列表
// @Description 最新创建的在前
// @Tags 会话
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Chat}
// @Router /api/v1/chats [get]
func (h *ChatHandler) List(c *gin.Context) {
	chats, err := h.conversations.ListChats(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		writeServiceError(c, err, "查询会话失败")
		return
	}
	Success(c, chats)
}

// Messages 会话消息
// @Summary 会话消息
// @Description 按 position 升序
// @Tags 会话
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} Response{data=[]models.Message}
// @Failure 404 {object} Response "会话不存在或无权访问"
// @Router /api/v1/chats/{id}/messages [get]
func (h *ChatHandler) Messages(c *gin.Context) {
	messages, err := h.conversations.ListMessages(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "查询消息失败")
		return
	}
	Success(c, messages)
}

// Send 发送消息并获取 AI 回复
// @Summary 发送消息
// @Description 模型不可用时返回兜底回复，请求仍然成功
// @Tags 会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param request body SendMessageRequest true "消息内容"
// @Success 201 {object} Response{data=models.Message} "AI 回复"
// @Failure 404 {object} Response "会话不存在或无权访问"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/chats/{id}/message [post]
func (h *ChatHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	reply, err := h.conversations.SendMessage(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), req.Content)
	if err != nil {
		writeServiceError(c, err, "发送消息失败")
		return
	}
	Created(c, reply)
}

// BulkDelete 批量删除会话
// @Summary 批量删除会话
// @Description 只删除属于当前用户的会话及其消息，其余 ID 忽略
// @Tags 会话
// @Accept json
// @Security BearerAuth
// @Param request body BulkDeleteRequest true "会话ID列表"
// @Success 204 "删除成功"
// @Failure 404 {object} Response "没有可删除的会话"
// @Failure 500 {object} Response "删除失败"
// @Router /api/v1/chats/bulk [delete]
func (h *ChatHandler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	_, err := h.conversations.DeleteChats(c.Request.Context(), middleware.GetCurrentUserID(c), req.ChatIDs)
	if errors.Is(err, service.ErrNoChatsDeleted) {
		NotFound(c, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("批量删除会话失败")
		InternalError(c, fmt.Sprintf("Internal server error during bulk deletion: %v", err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Export 导出会话记录
// @Summary 导出会话记录
// @Tags 会话
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param format query string false "xlsx 或 csv，默认 xlsx"
// @Success 200 {file} file "导出文件"
// @Failure 400 {object} Response "不支持的格式"
// @Failure 404 {object} Response "会话不存在或无权访问"
// @Router /api/v1/chats/{id}/export [get]
func (h *ChatHandler) Export(c *gin.Context) {
	file, err := h.conversations.ExportChat(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), c.Query("format"))
	if errors.Is(err, service.ErrUnsupportedExport) {
		BadRequest(c, "format 仅支持 xlsx 或 csv")
		return
	}
	if err != nil {
		writeServiceError(c, err, "导出失败")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
