package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/internal/api/middleware"
	"github.com/d60-Lab/social-graph/pkg/response"
)

// ListNotifications 通知列表
// @Summary 通知列表
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "只看未读"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=pageResult}
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	page, pageSize := pageParams(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	items, err := h.notifications.ListFor(c.Request.Context(), middleware.CallerID(c), unreadOnly, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, List: items, Count: len(items)})
}

// UnreadCount 未读数
// @Summary 未读通知数
// @Tags 通知
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/unread_count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.notifications.UnreadCount(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"unread": n})
}

// MarkAllRead 全部标为已读
// @Summary 全部标为已读
// @Tags 通知
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/mark_all_read [post]
func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"marked": n})
}

// MarkRead 单条标为已读
// @Summary 单条标为已读
// @Tags 通知
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/notifications/{id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), middleware.CallerID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
