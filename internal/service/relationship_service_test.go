package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/testutil"
)

func TestRelationshipService_FollowIsIdempotent(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()

	created, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, created, "second follow reports already following")

	var edges int64
	require.NoError(t, e.db.Model(&model.Follow{}).Where("follower_id = ? AND followee_id = ?", "alice", "bob").Count(&edges).Error)
	assert.Equal(t, int64(1), edges)

	// one notification per new edge
	got := e.notifications(t, "bob")
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].ActorID)
	assert.Equal(t, model.VerbFollowed, got[0].Verb)
	assert.Equal(t, model.TargetUser, got[0].TargetType)
	assert.Equal(t, "alice", got[0].TargetID)
}

func TestRelationshipService_FollowSelf(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")

	created, err := e.graph.Follow(context.Background(), "alice", "alice")
	assert.False(t, created)
	assert.ErrorIs(t, err, ErrFollowSelf)
	assert.ErrorIs(t, err, ErrSelfReference)
	assert.Equal(t, KindSelfReference, KindOf(err))

	following, err := e.graph.FollowingOf(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestRelationshipService_FollowUnknownUser(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")

	_, err := e.graph.Follow(context.Background(), "alice", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.graph.Unfollow(context.Background(), "alice", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelationshipService_FollowDirection(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()

	_, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)

	following, err := e.graph.FollowingOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, following)

	followers, err := e.graph.FollowersOf(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, followers)

	following, err = e.graph.FollowingOf(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, following, "follow is asymmetric")

	ok, err := e.graph.IsFollowing(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRelationshipService_UnfollowIsIdempotent(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()

	_, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)

	removed, err := e.graph.Unfollow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = e.graph.Unfollow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, removed)

	ok, err := e.graph.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	// refollow creates a new edge and notifies again
	created, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, e.notifications(t, "bob"), 2)
}

func TestRelationshipService_ConcurrentFollowSingleEdge(t *testing.T) {
	// several connections so the follows race on the unique edge index
	e := newEnvOn(t, testutil.NewFileDB(t, 8), nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := e.graph.Follow(ctx, "alice", "bob")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if created {
				wins++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, wins)
	assert.Len(t, e.notifications(t, "bob"), 1)
}

func TestRelationshipService_CountsAndLists(t *testing.T) {
	e := newEnv(t, nil)
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		e.user(t, name)
	}
	ctx := context.Background()

	for _, pair := range [][2]string{{"alice", "bob"}, {"carol", "bob"}, {"dave", "bob"}, {"bob", "alice"}} {
		_, err := e.graph.Follow(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	followers, following, err := e.graph.Counts(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), followers)
	assert.Equal(t, int64(1), following)

	fans, err := e.graph.ListFans(ctx, "bob", 1, 2)
	require.NoError(t, err)
	assert.Len(t, fans, 2)

	fans, err = e.graph.ListFans(ctx, "bob", 2, 2)
	require.NoError(t, err)
	assert.Len(t, fans, 1)

	list, err := e.graph.ListFollowing(ctx, "bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].Username)
}

func TestError_IsMatchesKind(t *testing.T) {
	err := notFound("post", "p1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrNotOwner))
	assert.Equal(t, "post p1 not found", err.Error())
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
}

func TestRelationshipService_FollowRollsBackWhenNotificationFails(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()
	require.NoError(t, e.db.Migrator().DropTable(&model.Notification{}))

	created, err := e.graph.Follow(ctx, "alice", "bob")
	require.Error(t, err)
	assert.False(t, created)

	ok, err := e.graph.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, ok, "edge is not kept without its notification")
}
