package api

import (
	"roleplay/database"
	"roleplay/models"
	"roleplay/service"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// RoleHandler 角色处理器
type RoleHandler struct {
	roles *service.RoleService
}

// NewRoleHandler 创建角色处理器
func NewRoleHandler() *RoleHandler {
	return &RoleHandler{roles: service.NewRoleService(database.DB)}
}

// CreateRoleRequest 创建角色请求
type CreateRoleRequest struct {
	Name            string                  `json:"name" binding:"required,min=1,max=50" example:"Sherlock"`
	Description     string                  `json:"description" binding:"required"`
	SystemPrompt    string                  `json:"system_prompt" binding:"required"`
	FewShotExamples []models.FewShotExample `json:"few_shot_examples"`
	IsActive        *bool                   `json:"is_active"`
}

// Create 创建角色
// @Summary 创建角色
// @Tags 角色
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRoleRequest true "角色信息"
// @Success 201 {object} Response{data=models.Role}
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "角色名已存在"
// @Router /api/v1/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	role := models.Role{
		Name:            req.Name,
		Description:     req.Description,
		SystemPrompt:    req.SystemPrompt,
		FewShotExamples: datatypes.JSONSlice[models.FewShotExample](req.FewShotExamples),
		IsActive:        req.IsActive == nil || *req.IsActive,
	}
	if role.FewShotExamples == nil {
		role.FewShotExamples = datatypes.JSONSlice[models.FewShotExample]{}
	}

	if err := h.roles.Create(c.Request.Context(), &role); err != nil {
		writeServiceError(c, err, "创建角色失败")
		return
	}
	Created(c, role)
}

// List 启用中的角色
// @Summary 角色列表
// @Tags 角色
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Role}
// @Router /api/v1/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roles.ListActive(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "查询角色失败")
		return
	}
	Success(c, roles)
}

// Get 角色详情
// @Summary 角色详情
// @Tags 角色
// @Produce json
// @Security BearerAuth
// @Param id path string true "角色ID"
// @Success 200 {object} Response{data=models.Role}
// @Failure 404 {object} Response "角色不存在或已停用"
// @Router /api/v1/roles/{id} [get]
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roles.GetActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "查询角色失败")
		return
	}
	Success(c, role)
}
