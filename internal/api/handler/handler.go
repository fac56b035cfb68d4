// Package handler contains the gin handlers of the /api/v1 surface.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/internal/api/middleware"
	"github.com/d60-Lab/social-graph/internal/service"
)

type Handler struct {
	relService    service.RelationshipService
	engagement    *service.EngagementService
	feed          *service.FeedService
	notifications *service.NotificationService
	users         *service.UserService
	tokens        *middleware.Tokens
}

func New(
	relService service.RelationshipService,
	engagement *service.EngagementService,
	feed *service.FeedService,
	notifications *service.NotificationService,
	users *service.UserService,
	tokens *middleware.Tokens,
) *Handler {
	return &Handler{
		relService:    relService,
		engagement:    engagement,
		feed:          feed,
		notifications: notifications,
		users:         users,
		tokens:        tokens,
	}
}

// pageParams reads page and page_size. Zero page_size selects the service default.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	if page < 1 {
		page = 1
	}
	return page, pageSize
}

type pageResult struct {
	Page  int         `json:"page"`
	List  interface{} `json:"list"`
	Count int         `json:"count"`
}
