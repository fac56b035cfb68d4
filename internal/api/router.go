// Package api wires handlers and middleware into a gin engine.
package api

import (
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/api/docs"
	"github.com/d60-Lab/social-graph/internal/api/handler"
	"github.com/d60-Lab/social-graph/internal/api/middleware"
	"github.com/d60-Lab/social-graph/pkg/metrics"
	"github.com/d60-Lab/social-graph/pkg/response"
)

type Options struct {
	ServiceName string
	RateRPS     float64
	RateBurst   int
	Sentry      bool
	DB          *gorm.DB
}

// NewRouter builds the engine serving /api/v1 plus the ops endpoints.
//
// @title Social Graph API
// @version 1.0
// @description Follow graph, read-time feed, likes, comments and notifications.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func NewRouter(h *handler.Handler, tokens *middleware.Tokens, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 2 * time.Second}))
	}
	r.Use(
		otelgin.Middleware(opts.ServiceName),
		gzip.Gzip(gzip.DefaultCompression),
		metrics.Middleware(),
		middleware.AccessLog(),
	)

	r.GET("/healthz", healthz(opts.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiter := middleware.NewRateLimiter(opts.RateRPS, opts.RateBurst)
	auth := middleware.AuthRequired(tokens)

	v1 := r.Group("/api/v1", middleware.OptionalAuth(tokens), limiter.Middleware())
	{
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)

		v1.GET("/users/me", auth, h.Me)
		v1.PATCH("/users/me", auth, h.UpdateMe)
		v1.GET("/users/:user_id", h.GetUser)

		rel := v1.Group("/relations/:user_id")
		rel.POST("/follow", auth, h.Follow)
		rel.POST("/unfollow", auth, h.Unfollow)
		rel.GET("/following", h.ListFollowing)
		rel.GET("/fans", h.ListFans)

		v1.GET("/posts", h.ListPosts)
		v1.POST("/posts", auth, h.CreatePost)
		v1.GET("/posts/:id", h.GetPost)
		v1.PATCH("/posts/:id", auth, h.UpdatePost)
		v1.DELETE("/posts/:id", auth, h.DeletePost)
		v1.POST("/posts/:id/like", auth, h.LikePost)
		v1.POST("/posts/:id/unlike", auth, h.UnlikePost)
		v1.GET("/posts/:id/comments", h.ListComments)
		v1.POST("/posts/:id/comments", auth, h.CreateComment)

		v1.PATCH("/comments/:id", auth, h.UpdateComment)
		v1.DELETE("/comments/:id", auth, h.DeleteComment)

		v1.GET("/feed", auth, h.Feed)

		n := v1.Group("/notifications", auth)
		n.GET("", h.ListNotifications)
		n.GET("/unread_count", h.UnreadCount)
		n.POST("/mark_all_read", h.MarkAllRead)
		n.POST("/:id/read", h.MarkRead)
	}
	return r
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Response{Code: response.CodeInternal, Message: "database unavailable"})
				return
			}
		}
		response.Success(c, gin.H{"status": "ok"})
	}
}
