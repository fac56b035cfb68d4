package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/pkg/markdown"
)

type CreatePostInput struct {
	AuthorID string `validate:"required"`
	Title    string `validate:"required,max=200"`
	Content  string `validate:"required"`
}

// UpdatePostInput carries a partial update; nil fields are left unchanged.
type UpdatePostInput struct {
	Title   *string
	Content *string
}

type postFields struct {
	Title   string `validate:"required,max=200"`
	Content string `validate:"required"`
}

// CreatePost 发帖；作者即调用方，之后不可变更
func (s *EngagementService) CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	now := s.now()
	post := &model.Post{
		ID:        uuid.New().String(),
		AuthorID:  in.AuthorID,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.ContentHTML = markdown.Render(post.Content)
	if authors, err := s.users.Summaries(ctx, []string{post.AuthorID}); err == nil {
		post.Author = authors[post.AuthorID]
	}
	return post, nil
}

// UpdatePost edits title and/or content. Only the author may do it.
func (s *EngagementService) UpdatePost(ctx context.Context, callerID, postID string, in UpdatePostInput) (*model.Post, error) {
	post, err := s.store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, lookupErr(err, "post", postID)
	}
	if err := ensureOwner(callerID, post.AuthorID, "post"); err != nil {
		return nil, err
	}

	fields := postFields{Title: post.Title, Content: post.Content}
	if in.Title != nil {
		fields.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		fields.Content = strings.TrimSpace(*in.Content)
	}
	if err := validate.Struct(fields); err != nil {
		return nil, validationError(err)
	}

	post.Title = fields.Title
	post.Content = fields.Content
	post.UpdatedAt = s.now()
	if err := s.store.Posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if err := s.enrich(ctx, callerID, []*model.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post with its likes and comments in one transaction.
// Notifications that reference the post are kept; their target simply no longer
// resolves.
func (s *EngagementService) DeletePost(ctx context.Context, callerID, postID string) error {
	post, err := s.store.Posts.Get(ctx, postID)
	if err != nil {
		return lookupErr(err, "post", postID)
	}
	if err := ensureOwner(callerID, post.AuthorID, "post"); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx *repository.Store) error {
		if err := tx.Likes.DeleteByPost(ctx, postID); err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if _, err := tx.Comments.DeleteByPost(ctx, postID); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Posts.Delete(ctx, postID); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
}

// GetPost returns the post with counts and whether viewerID liked it.
func (s *EngagementService) GetPost(ctx context.Context, postID, viewerID string) (*model.Post, error) {
	post, err := s.store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, lookupErr(err, "post", postID)
	}
	if err := s.enrich(ctx, viewerID, []*model.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts lists every post newest first, optionally filtered by a title/content substring.
func (s *EngagementService) ListPosts(ctx context.Context, viewerID, query string, page, pageSize int) ([]*model.Post, error) {
	offset, limit := s.bounds(page, pageSize)
	posts, err := s.store.Posts.List(ctx, strings.TrimSpace(query), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if err := s.enrich(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAuthor lists one author's posts newest first.
func (s *EngagementService) ListByAuthor(ctx context.Context, viewerID, authorID string, page, pageSize int) ([]*model.Post, error) {
	offset, limit := s.bounds(page, pageSize)
	posts, err := s.store.Posts.ListByAuthors(ctx, []string{authorID}, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts by %s: %w", authorID, err)
	}
	if err := s.enrich(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *EngagementService) enrich(ctx context.Context, viewerID string, posts []*model.Post) error {
	return enrichPosts(ctx, s.store, s.users, viewerID, posts)
}
