// Package app assembles the repositories, caches and services shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/config"
	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/pubsub"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/internal/service"
)

type App struct {
	Store         *repository.Store
	Users         *cache.UserCache
	Notifications *service.NotificationService
	Relations     service.RelationshipService
	Engagement    *service.EngagementService
	Feed          *service.FeedService
	Accounts      *service.UserService
}

// New wires every service over db. rdb may be nil, which disables the user cache
// and realtime publishing.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	store := repository.NewStore(db)
	opts := []service.Option{service.WithPageSize(cfg.Feed.PageSize, cfg.Feed.MaxPageSize)}

	users := cache.NewUserCache(store.Users, rdb, cfg.Redis.CacheTTL)
	notifications := service.NewNotificationService(store, users, pubsub.NewPublisher(rdb), opts...)
	relations := service.NewRelationshipService(store, notifications, users, opts...)
	return &App{
		Store:         store,
		Users:         users,
		Notifications: notifications,
		Relations:     relations,
		Engagement:    service.NewEngagementService(store, notifications, users, opts...),
		Feed:          service.NewFeedService(store, relations, users, opts...),
		Accounts:      service.NewUserService(store, relations, users, opts...),
	}
}

// NewRedis connects when an address is configured and returns nil otherwise.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
