package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/pkg/markdown"
	"github.com/d60-Lab/social-graph/pkg/metrics"
)

// FeedService composes a viewer's feed at read time: the posts of everyone the
// viewer follows, newest first. Nothing is precomputed.
type FeedService struct {
	store *repository.Store
	graph RelationshipService
	users *cache.UserCache
	settings
}

func NewFeedService(store *repository.Store, graph RelationshipService, users *cache.UserCache, opts ...Option) *FeedService {
	return &FeedService{store: store, graph: graph, users: users, settings: newSettings(opts)}
}

// Feed returns one page. An empty following set yields an empty page. The viewer
// cannot follow themself, so their own posts never appear.
func (s *FeedService) Feed(ctx context.Context, viewerID string, page, pageSize int) ([]*model.Post, error) {
	authorIDs, err := s.graph.FollowingOf(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	metrics.FeedFanout.Observe(float64(len(authorIDs)))
	if len(authorIDs) == 0 {
		return []*model.Post{}, nil
	}

	offset, limit := s.bounds(page, pageSize)
	posts, err := s.store.Posts.ListByAuthors(ctx, authorIDs, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("feed posts: %w", err)
	}
	if err := enrichPosts(ctx, s.store, s.users, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// enrichPosts fills the computed fields: like and comment counts, the viewer's
// Liked flag and author summaries.
func enrichPosts(ctx context.Context, store *repository.Store, users *cache.UserCache, viewerID string, posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	authorIDs := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		authorIDs[i] = p.AuthorID
	}

	likes, err := store.Likes.CountByPosts(ctx, ids)
	if err != nil {
		return fmt.Errorf("count likes: %w", err)
	}
	comments, err := store.Comments.CountByPosts(ctx, ids)
	if err != nil {
		return fmt.Errorf("count comments: %w", err)
	}
	liked, err := store.Likes.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return fmt.Errorf("liked posts: %w", err)
	}
	authors, err := users.Summaries(ctx, authorIDs)
	if err != nil {
		return err
	}

	for _, p := range posts {
		p.LikesCount = likes[p.ID]
		p.CommentsCount = comments[p.ID]
		p.Liked = liked[p.ID]
		p.Author = authors[p.AuthorID]
		p.ContentHTML = markdown.Render(p.Content)
	}
	return nil
}
