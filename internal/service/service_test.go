package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/pubsub"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/internal/testutil"
)

type env struct {
	db         *gorm.DB
	store      *repository.Store
	notifier   *NotificationService
	graph      RelationshipService
	engagement *EngagementService
	feed       *FeedService
	users      *UserService
}

func newEnv(t *testing.T, rdb *redis.Client, opts ...Option) *env {
	t.Helper()
	return newEnvOn(t, testutil.NewDB(t), rdb, opts...)
}

// newEnvOn builds the services over db, e.g. a multi-connection file database.
func newEnvOn(t *testing.T, db *gorm.DB, rdb *redis.Client, opts ...Option) *env {
	t.Helper()
	store := repository.NewStore(db)
	clock := testutil.NewClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)

	userCache := cache.NewUserCache(store.Users, rdb, time.Minute)
	notifier := NewNotificationService(store, userCache, pubsub.NewPublisher(rdb), opts...)
	graph := NewRelationshipService(store, notifier, userCache, opts...)
	return &env{
		db:         db,
		store:      store,
		notifier:   notifier,
		graph:      graph,
		engagement: NewEngagementService(store, notifier, userCache, opts...),
		feed:       NewFeedService(store, graph, userCache, opts...),
		users:      NewUserService(store, graph, userCache, opts...),
	}
}

func (e *env) user(t *testing.T, name string) *model.User {
	return testutil.CreateUser(t, e.db, name)
}

func (e *env) post(t *testing.T, authorID, title string) *model.Post {
	t.Helper()
	p, err := e.engagement.CreatePost(context.Background(), CreatePostInput{
		AuthorID: authorID,
		Title:    title,
		Content:  "content of " + title,
	})
	require.NoError(t, err)
	return p
}

func (e *env) notifications(t *testing.T, recipientID string) []*model.Notification {
	t.Helper()
	items, err := e.notifier.ListFor(context.Background(), recipientID, false, 1, 100)
	require.NoError(t, err)
	return items
}
