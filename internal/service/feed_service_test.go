package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_EmptyFollowingSet(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	e.post(t, "bob", "unseen")
	e.post(t, "alice", "own")

	feed, err := e.feed.Feed(context.Background(), "alice", 1, 20)
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}

func TestFeed_OnlyFollowedAuthorsNewestFirst(t *testing.T) {
	e := newEnv(t, nil)
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		e.user(t, name)
	}
	ctx := context.Background()

	_, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = e.graph.Follow(ctx, "alice", "carol")
	require.NoError(t, err)

	b1 := e.post(t, "bob", "b1")
	e.post(t, "dave", "d1")
	c1 := e.post(t, "carol", "c1")
	e.post(t, "alice", "a1")
	b2 := e.post(t, "bob", "b2")

	feed, err := e.feed.Feed(ctx, "alice", 1, 20)
	require.NoError(t, err)
	var ids []string
	for _, p := range feed {
		ids = append(ids, p.ID)
		assert.NotEqual(t, "alice", p.AuthorID, "own posts never appear")
		assert.NotEqual(t, "dave", p.AuthorID)
	}
	assert.Equal(t, []string{b2.ID, c1.ID, b1.ID}, ids)
}

func TestFeed_ReflectsUnfollowImmediately(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()

	_, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	e.post(t, "bob", "b1")

	feed, err := e.feed.Feed(ctx, "alice", 1, 20)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	_, err = e.graph.Unfollow(ctx, "alice", "bob")
	require.NoError(t, err)

	feed, err = e.feed.Feed(ctx, "alice", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestFeed_StablePagination(t *testing.T) {
	e := newEnv(t, nil, WithPageSize(3, 5))
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()
	_, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		e.post(t, "bob", fmt.Sprintf("post-%d", i))
	}

	seen := map[string]bool{}
	var sizes []int
	for page := 1; page <= 3; page++ {
		feed, err := e.feed.Feed(ctx, "alice", page, 0)
		require.NoError(t, err)
		sizes = append(sizes, len(feed))
		for _, p := range feed {
			assert.False(t, seen[p.ID], "post %s repeated across pages", p.Title)
			seen[p.ID] = true
		}
	}
	assert.Equal(t, []int{3, 3, 1}, sizes)

	capped, err := e.feed.Feed(ctx, "alice", 1, 50)
	require.NoError(t, err)
	assert.Len(t, capped, 5, "page size is capped")
}

func TestFeed_Enrichment(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	e.user(t, "carol")
	ctx := context.Background()
	_, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	p := e.post(t, "bob", "P1")

	_, err = e.engagement.Like(ctx, "carol", p.ID)
	require.NoError(t, err)
	_, err = e.engagement.CreateComment(ctx, CreateCommentInput{PostID: p.ID, AuthorID: "carol", Content: "hi"})
	require.NoError(t, err)

	feed, err := e.feed.Feed(ctx, "alice", 1, 20)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, int64(1), feed[0].LikesCount)
	assert.Equal(t, int64(1), feed[0].CommentsCount)
	assert.False(t, feed[0].Liked)
	require.NotNil(t, feed[0].Author)
	assert.Equal(t, "bob", feed[0].Author.Username)
}

func TestFeed_PagePastEndIsEmpty(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()
	_, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		e.post(t, "bob", fmt.Sprintf("p%d", i))
	}

	for _, page := range []int{2, 461168601842738792} {
		feed, err := e.feed.Feed(ctx, "alice", page, 20)
		require.NoError(t, err)
		assert.Empty(t, feed, "page %d", page)
	}
}
