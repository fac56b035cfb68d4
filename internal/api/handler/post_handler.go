package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/internal/api/middleware"
	"github.com/d60-Lab/social-graph/internal/service"
	"github.com/d60-Lab/social-graph/pkg/response"
)

type createPostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type updatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ListPosts 帖子列表，可按 q 搜索标题和正文
// @Summary 帖子列表
// @Tags 帖子
// @Produce json
// @Param q query string false "搜索关键字"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=pageResult}
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, pageSize := pageParams(c)
	posts, err := h.engagement.ListPosts(c.Request.Context(), middleware.CallerID(c), c.Query("q"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, List: posts, Count: len(posts)})
}

// CreatePost 发帖
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "帖子内容"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.engagement.CreatePost(c.Request.Context(), service.CreatePostInput{
		AuthorID: middleware.CallerID(c),
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// GetPost 帖子详情
// @Summary 帖子详情
// @Tags 帖子
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.engagement.GetPost(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// UpdatePost 修改帖子（仅作者）
// @Summary 修改帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param request body updatePostRequest true "修改内容"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [patch]
func (h *Handler) UpdatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.engagement.UpdatePost(c.Request.Context(), middleware.CallerID(c), c.Param("id"), service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除帖子（仅作者），连同点赞和评论；通知保留
// @Summary 删除帖子
// @Tags 帖子
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.engagement.DeletePost(c.Request.Context(), middleware.CallerID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// LikePost 点赞
// @Summary 点赞
// @Tags 帖子
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Success 201 {object} response.Response{data=model.Like}
// @Failure 400 {object} response.Response "already liked"
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/like [post]
func (h *Handler) LikePost(c *gin.Context) {
	like, err := h.engagement.Like(c.Request.Context(), middleware.CallerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, like)
}

// UnlikePost 取消点赞
// @Summary 取消点赞
// @Tags 帖子
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "not liked"
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/unlike [post]
func (h *Handler) UnlikePost(c *gin.Context) {
	if err := h.engagement.Unlike(c.Request.Context(), middleware.CallerID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"detail": "Post unliked."})
}
