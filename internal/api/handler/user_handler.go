package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/internal/api/middleware"
	"github.com/d60-Lab/social-graph/internal/service"
	"github.com/d60-Lab/social-graph/pkg/response"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Register 注册
// @Summary 注册并返回令牌
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response{data=tokenResponse}
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, tokenResponse{Token: token, User: user})
}

// Login 登录
// @Summary 登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=tokenResponse}
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, tokenResponse{Token: token, User: user})
}

// Me 当前用户资料
// @Summary 当前用户资料（含粉丝数、关注数）
// @Tags 用户
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.Profile}
// @Router /api/v1/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateMe 修改资料
// @Summary 修改简介和头像
// @Tags 用户
// @Accept json
// @Security BearerAuth
// @Param request body updateProfileRequest true "资料"
// @Success 200 {object} response.Response{data=service.Profile}
// @Failure 400 {object} response.Response
// @Router /api/v1/users/me [patch]
func (h *Handler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, err := h.users.UpdateProfile(c.Request.Context(), middleware.CallerID(c), service.UpdateProfileInput{
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// GetUser 用户公开资料
// @Summary 用户公开资料
// @Tags 用户
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=service.Profile}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{user_id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	profile.Email = ""
	response.Success(c, profile)
}
