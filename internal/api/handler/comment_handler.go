package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/internal/api/middleware"
	"github.com/d60-Lab/social-graph/internal/service"
	"github.com/d60-Lab/social-graph/pkg/response"
)

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListComments 评论列表
// @Summary 评论列表（新的在前）
// @Tags 评论
// @Produce json
// @Param id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=pageResult}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	page, pageSize := pageParams(c)
	comments, err := h.engagement.ListComments(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, List: comments, Count: len(comments)})
}

// CreateComment 发表评论
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} response.Response{data=model.Comment}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.engagement.CreateComment(c.Request.Context(), service.CreateCommentInput{
		PostID:   c.Param("id"),
		AuthorID: middleware.CallerID(c),
		Content:  req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// UpdateComment 修改评论（仅作者）
// @Summary 修改评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "评论ID"
// @Param request body commentRequest true "评论内容"
// @Success 200 {object} response.Response{data=model.Comment}
// @Failure 403 {object} response.Response
// @Router /api/v1/comments/{id} [patch]
func (h *Handler) UpdateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.engagement.UpdateComment(c.Request.Context(), middleware.CallerID(c), c.Param("id"), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 删除评论（仅作者）
// @Summary 删除评论
// @Tags 评论
// @Security BearerAuth
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.engagement.DeleteComment(c.Request.Context(), middleware.CallerID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
