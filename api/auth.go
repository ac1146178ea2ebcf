package api

import (
	"errors"
	"net/http"

	"roleplay/config"
	"roleplay/database"
	"roleplay/middleware"
	"roleplay/queue"
	"roleplay/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg      *config.Config
	users    *service.UserService
	notifier queue.Notifier
}

// NewAuthHandler 创建认证处理器，notifier 为空时不发送欢迎邮件
func NewAuthHandler(cfg *config.Config, notifier queue.Notifier) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		users:    service.NewUserService(database.DB),
		notifier: notifier,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"peter"`
	Email    string `json:"email" binding:"required,email,max=100" example:"peter@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"password123"`
}

// LoginRequest 登录请求，支持 JSON 与表单
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required" example:"peter"`
	Password string `json:"password" form:"password" binding:"required" example:"password123"`
}

// TokenResponse 登录响应
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户，用户名与邮箱均唯一，先检查用户名
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 201 {object} Response{data=models.User} "注册成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "用户名或邮箱已被注册"
// @Router /api/v1/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err, "创建用户失败")
		return
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyWelcome(c.Request.Context(), user.Email, user.Username); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("欢迎邮件投递失败")
		}
	}

	Created(c, user)
}

// Token 登录获取访问令牌
// @Summary 登录
// @Description 用户名密码换取 Bearer 令牌，响应体遵循 OAuth2 password flow
// @Tags 认证
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} TokenResponse "登录成功"
// @Failure 401 {object} Response "用户名或密码错误"
// @Failure 403 {object} Response "用户已停用"
// @Router /api/v1/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidLogin):
		Unauthorized(c, err.Error())
		return
	case errors.Is(err, service.ErrInactiveUser):
		Forbidden(c, err.Error())
		return
	case err != nil:
		writeServiceError(c, err, "登录失败")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me 当前用户信息
// @Summary 当前用户
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Failure 401 {object} Response "未认证"
// @Router /api/v1/users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "Could not validate credentials")
		return
	}
	Success(c, user)
}
