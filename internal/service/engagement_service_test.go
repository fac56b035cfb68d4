package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/testutil"
)

func TestEngagement_FollowPostLikeScenario(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()

	_, err := e.graph.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	p1 := e.post(t, "bob", "P1")

	feed, err := e.feed.Feed(ctx, "alice", 1, 20)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, p1.ID, feed[0].ID)

	_, err = e.engagement.Like(ctx, "alice", p1.ID)
	require.NoError(t, err)

	_, err = e.engagement.Like(ctx, "alice", p1.ID)
	assert.ErrorIs(t, err, ErrAlreadyLiked)
	assert.Equal(t, KindDuplicateAction, KindOf(err))

	var likes []*model.Notification
	for _, n := range e.notifications(t, "bob") {
		if n.Verb == model.VerbLiked {
			likes = append(likes, n)
		}
	}
	require.Len(t, likes, 1)
	assert.Equal(t, "alice", likes[0].ActorID)
	assert.Equal(t, p1.ID, likes[0].TargetID)
	require.NotNil(t, likes[0].Actor)
	assert.Equal(t, "alice", likes[0].Actor.Username)

	post, err := e.engagement.GetPost(ctx, p1.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.LikesCount)
	assert.True(t, post.Liked)
}

func TestEngagement_SelfLikeDoesNotNotify(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "bob")
	ctx := context.Background()
	p := e.post(t, "bob", "mine")

	_, err := e.engagement.Like(ctx, "bob", p.ID)
	require.NoError(t, err)
	_, err = e.engagement.CreateComment(ctx, CreateCommentInput{PostID: p.ID, AuthorID: "bob", Content: "self"})
	require.NoError(t, err)

	assert.Empty(t, e.notifications(t, "bob"))

	post, err := e.engagement.GetPost(ctx, p.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.LikesCount)
	assert.Equal(t, int64(1), post.CommentsCount)
}

func TestEngagement_UnlikeWithoutLike(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()
	p := e.post(t, "bob", "P1")

	err := e.engagement.Unlike(ctx, "alice", p.ID)
	assert.ErrorIs(t, err, ErrNotLiked)
	assert.Equal(t, KindAlreadyInState, KindOf(err))

	_, err = e.engagement.Like(ctx, "alice", p.ID)
	require.NoError(t, err)
	require.NoError(t, e.engagement.Unlike(ctx, "alice", p.ID))

	post, err := e.engagement.GetPost(ctx, p.ID, "alice")
	require.NoError(t, err)
	assert.Zero(t, post.LikesCount)
	assert.False(t, post.Liked)

	// like notifications are not retracted
	assert.Len(t, e.notifications(t, "bob"), 1)
}

func TestEngagement_LikeMissingPost(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")

	_, err := e.engagement.Like(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, e.engagement.Unlike(context.Background(), "alice", "nope"), ErrNotFound)
}

func TestEngagement_ConcurrentLikeSingleWinner(t *testing.T) {
	// several connections so the likes race on the unique (user_id, post_id) index
	e := newEnvOn(t, testutil.NewFileDB(t, 8), nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()
	p := e.post(t, "bob", "P1")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		already int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.engagement.Like(ctx, "alice", p.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case KindOf(err) == KindDuplicateAction:
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, already)
	assert.Len(t, e.notifications(t, "bob"), 1)
}

func TestEngagement_CommentOwnership(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	e.user(t, "carol")
	ctx := context.Background()
	p := e.post(t, "bob", "P1")

	c, err := e.engagement.CreateComment(ctx, CreateCommentInput{PostID: p.ID, AuthorID: "alice", Content: "  nice  "})
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Content)
	require.NotNil(t, c.Author)
	assert.Equal(t, "alice", c.Author.Username)

	got := e.notifications(t, "bob")
	require.Len(t, got, 1)
	assert.Equal(t, model.VerbCommented, got[0].Verb)
	assert.Equal(t, model.TargetPost, got[0].TargetType)
	assert.Equal(t, p.ID, got[0].TargetID)

	_, err = e.engagement.UpdateComment(ctx, "carol", c.ID, "hijack")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, e.engagement.DeleteComment(ctx, "bob", c.ID), ErrNotOwner, "post author does not own the comment")

	stored, err := e.store.Comments.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "nice", stored.Content)

	updated, err := e.engagement.UpdateComment(ctx, "alice", c.ID, "even nicer")
	require.NoError(t, err)
	assert.Equal(t, "even nicer", updated.Content)

	require.NoError(t, e.engagement.DeleteComment(ctx, "alice", c.ID))
	_, err = e.engagement.UpdateComment(ctx, "alice", c.ID, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, e.notifications(t, "bob"), 1, "notifications outlive the comment")
}

func TestEngagement_CommentValidation(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	ctx := context.Background()
	p := e.post(t, "alice", "P1")

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"too long", strings.Repeat("x", 10001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.engagement.CreateComment(ctx, CreateCommentInput{PostID: p.ID, AuthorID: "alice", Content: tt.content})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := e.engagement.CreateComment(ctx, CreateCommentInput{PostID: "missing", AuthorID: "alice", Content: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngagement_ListCommentsNewestFirst(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	ctx := context.Background()
	p := e.post(t, "alice", "P1")

	for _, text := range []string{"first", "second", "third"} {
		_, err := e.engagement.CreateComment(ctx, CreateCommentInput{PostID: p.ID, AuthorID: "alice", Content: text})
		require.NoError(t, err)
	}

	comments, err := e.engagement.ListComments(ctx, p.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "third", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)

	_, err = e.engagement.ListComments(ctx, "missing", 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngagement_PostOwnership(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()
	p := e.post(t, "bob", "P1")

	title := "stolen"
	_, err := e.engagement.UpdatePost(ctx, "alice", p.ID, UpdatePostInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, e.engagement.DeletePost(ctx, "alice", p.ID), ErrNotOwner)

	title = "renamed"
	updated, err := e.engagement.UpdatePost(ctx, "bob", p.ID, UpdatePostInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "content of P1", updated.Content)
	assert.Equal(t, "bob", updated.AuthorID)

	empty := " "
	_, err = e.engagement.UpdatePost(ctx, "bob", p.ID, UpdatePostInput{Content: &empty})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEngagement_CreatePostValidation(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	ctx := context.Background()

	_, err := e.engagement.CreatePost(ctx, CreatePostInput{AuthorID: "alice", Title: "", Content: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.engagement.CreatePost(ctx, CreatePostInput{AuthorID: "alice", Title: strings.Repeat("t", 201), Content: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.engagement.CreatePost(ctx, CreatePostInput{AuthorID: "alice", Title: "ok", Content: ""})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEngagement_DeletePostRemovesLikesAndComments(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()
	p := e.post(t, "bob", "P1")
	other := e.post(t, "bob", "P2")

	_, err := e.engagement.Like(ctx, "alice", p.ID)
	require.NoError(t, err)
	_, err = e.engagement.CreateComment(ctx, CreateCommentInput{PostID: p.ID, AuthorID: "alice", Content: "hi"})
	require.NoError(t, err)
	_, err = e.engagement.Like(ctx, "alice", other.ID)
	require.NoError(t, err)
	require.Len(t, e.notifications(t, "bob"), 3)

	require.NoError(t, e.engagement.DeletePost(ctx, "bob", p.ID))

	_, err = e.engagement.GetPost(ctx, p.ID, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	var likes, comments int64
	require.NoError(t, e.db.Model(&model.Like{}).Where("post_id = ?", p.ID).Count(&likes).Error)
	require.NoError(t, e.db.Model(&model.Comment{}).Where("post_id = ?", p.ID).Count(&comments).Error)
	assert.Zero(t, likes)
	assert.Zero(t, comments)

	// notifications are immutable apart from is_read; they stay and point at a gone post
	remaining := e.notifications(t, "bob")
	require.Len(t, remaining, 3)
	for _, n := range remaining {
		assert.False(t, n.IsRead)
		assert.Equal(t, model.TargetPost, n.TargetType)
	}
	unread, err := e.notifier.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)
}

func TestEngagement_ListPostsSearch(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()
	e.post(t, "alice", "Go tips")
	e.post(t, "bob", "Cooking")
	e.post(t, "bob", "More Go")

	all, err := e.engagement.ListPosts(ctx, "alice", "", 1, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "More Go", all[0].Title)

	found, err := e.engagement.ListPosts(ctx, "alice", "Go", 1, 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	byBob, err := e.engagement.ListByAuthor(ctx, "alice", "bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, byBob, 2)
	require.NotNil(t, byBob[0].Author)
	assert.Equal(t, "bob", byBob[0].Author.Username)
}

func TestEngagement_PostContentRenderedSafely(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	alice := e.user(t, "alice")

	post, err := e.engagement.CreatePost(ctx, CreatePostInput{
		AuthorID: alice.ID,
		Title:    "rich",
		Content:  "**bold** <script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.Contains(t, post.ContentHTML, "<strong>bold</strong>")
	assert.NotContains(t, post.ContentHTML, "<script>")
	assert.Contains(t, post.Content, "<script>", "stored content is kept as written")

	got, err := e.engagement.GetPost(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ContentHTML, got.ContentHTML)
}

func TestEngagement_NotificationFailureRollsBack(t *testing.T) {
	e := newEnv(t, nil)
	e.user(t, "alice")
	e.user(t, "bob")
	ctx := context.Background()
	p := e.post(t, "bob", "P1")
	require.NoError(t, e.db.Migrator().DropTable(&model.Notification{}))

	_, err := e.engagement.Like(ctx, "alice", p.ID)
	require.Error(t, err)
	_, err = e.engagement.CreateComment(ctx, CreateCommentInput{PostID: p.ID, AuthorID: "alice", Content: "hi"})
	require.Error(t, err)

	var likes, comments int64
	require.NoError(t, e.db.Model(&model.Like{}).Where("post_id = ?", p.ID).Count(&likes).Error)
	require.NoError(t, e.db.Model(&model.Comment{}).Where("post_id = ?", p.ID).Count(&comments).Error)
	assert.Zero(t, likes, "like is not kept without its notification")
	assert.Zero(t, comments, "comment is not kept without its notification")

	// self actions never write a notification, so they still succeed
	_, err = e.engagement.Like(ctx, "bob", p.ID)
	assert.NoError(t, err)
}
