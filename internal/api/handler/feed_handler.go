package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/internal/api/middleware"
	"github.com/d60-Lab/social-graph/pkg/response"
)

// Feed 关注流（读时扇出）
// @Summary 关注的人发布的帖子，新的在前
// @Tags 关注流
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=pageResult}
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	page, pageSize := pageParams(c)
	posts, err := h.feed.Feed(c.Request.Context(), middleware.CallerID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, List: posts, Count: len(posts)})
}
