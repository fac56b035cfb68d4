package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/internal/api/middleware"
	"github.com/d60-Lab/social-graph/pkg/response"
)

// Follow 关注用户（调用方关注 user_id）
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "被关注用户ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/{user_id}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	target := c.Param("user_id")
	created, err := h.relService.Follow(c.Request.Context(), middleware.CallerID(c), target)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg := "You are now following " + target
	if !created {
		msg = "You are already following " + target
	}
	response.Success(c, gin.H{"following": true, "created": created, "detail": msg})
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "被取消关注用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/{user_id}/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	target := c.Param("user_id")
	removed, err := h.relService.Unfollow(c.Request.Context(), middleware.CallerID(c), target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"following": false, "removed": removed})
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=pageResult}
// @Router /api/v1/relations/{user_id}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.relService.ListFollowing(c.Request.Context(), c.Param("user_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, List: list, Count: len(list)})
}

// ListFans 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=pageResult}
// @Router /api/v1/relations/{user_id}/fans [get]
func (h *Handler) ListFans(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.relService.ListFans(c.Request.Context(), c.Param("user_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, List: list, Count: len(list)})
}
