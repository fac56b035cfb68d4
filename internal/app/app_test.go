package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-graph/config"
	"github.com/d60-Lab/social-graph/internal/service"
	"github.com/d60-Lab/social-graph/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		Feed:  config.FeedConfig{PageSize: 2, MaxPageSize: 3},
		Redis: config.RedisConfig{CacheTTL: time.Minute},
	}
}

func TestNew_UsesConfiguredPageSize(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")
	a := New(testConfig(), db, nil)
	ctx := context.Background()

	_, err := a.Relations.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	for _, title := range []string{"one", "two", "three", "four"} {
		_, err := a.Engagement.CreatePost(ctx, service.CreatePostInput{AuthorID: "bob", Title: title, Content: "body"})
		require.NoError(t, err)
	}

	feed, err := a.Feed.Feed(ctx, "alice", 1, 0)
	require.NoError(t, err)
	assert.Len(t, feed, 2)

	feed, err = a.Feed.Feed(ctx, "alice", 1, 10)
	require.NoError(t, err)
	assert.Len(t, feed, 3)
}

func TestNewRedis(t *testing.T) {
	rdb, err := NewRedis(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	addr := mr.Addr()
	rdb, err = NewRedis(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	_ = rdb.Close()

	mr.Close()
	_, err = NewRedis(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
