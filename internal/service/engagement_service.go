package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/pkg/metrics"
)

var validate = validator.New()

// EngagementService owns posts, likes and comments.
type EngagementService struct {
	store    *repository.Store
	notifier *NotificationService
	users    *cache.UserCache
	settings
}

func NewEngagementService(store *repository.Store, notifier *NotificationService, users *cache.UserCache, opts ...Option) *EngagementService {
	return &EngagementService{store: store, notifier: notifier, users: users, settings: newSettings(opts)}
}

// ensureOwner is the single ownership rule for every mutating operation.
func ensureOwner(callerID, authorID, resource string) error {
	if callerID != authorID {
		return notOwner(resource)
	}
	return nil
}

// Like records userID's like on postID and notifies the author. A second like by
// the same user is rejected with ErrAlreadyLiked; the unique index decides races.
func (s *EngagementService) Like(ctx context.Context, userID, postID string) (*model.Like, error) {
	post, err := s.store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, lookupErr(err, "post", postID)
	}

	like := &model.Like{ID: uuid.New().String(), UserID: userID, PostID: postID, CreatedAt: s.now()}
	var n *model.Notification
	err = s.store.Atomic(ctx, func(tx *repository.Store) error {
		created, err := tx.Likes.Create(ctx, like)
		if err != nil {
			return fmt.Errorf("create like: %w", err)
		}
		if !created {
			return ErrAlreadyLiked
		}
		n, err = s.notifier.notifyTx(ctx, tx, post.AuthorID, userID, model.VerbLiked,
			&model.Target{Type: model.TargetPost, ID: postID})
		return err
	})
	metrics.Observe("like", err, true)
	if err != nil {
		return nil, err
	}
	s.notifier.publish(ctx, n)
	return like, nil
}

// Unlike removes the like. With nothing to remove it returns ErrNotLiked.
func (s *EngagementService) Unlike(ctx context.Context, userID, postID string) error {
	if _, err := s.store.Posts.Get(ctx, postID); err != nil {
		return lookupErr(err, "post", postID)
	}
	var removed bool
	err := s.store.Atomic(ctx, func(tx *repository.Store) error {
		var err error
		removed, err = tx.Likes.Delete(ctx, userID, postID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		if !removed {
			return ErrNotLiked
		}
		return nil
	})
	metrics.Observe("unlike", err, removed)
	return err
}

type CreateCommentInput struct {
	PostID   string `validate:"required"`
	AuthorID string `validate:"required"`
	Content  string `validate:"required,max=10000"`
}

func (s *EngagementService) CreateComment(ctx context.Context, in CreateCommentInput) (*model.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	post, err := s.store.Posts.Get(ctx, in.PostID)
	if err != nil {
		return nil, lookupErr(err, "post", in.PostID)
	}

	now := s.now()
	comment := &model.Comment{
		ID:        uuid.New().String(),
		PostID:    in.PostID,
		AuthorID:  in.AuthorID,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var n *model.Notification
	err = s.store.Atomic(ctx, func(tx *repository.Store) error {
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		var err error
		n, err = s.notifier.notifyTx(ctx, tx, post.AuthorID, in.AuthorID, model.VerbCommented,
			&model.Target{Type: model.TargetPost, ID: post.ID})
		return err
	})
	metrics.Observe("comment", err, true)
	if err != nil {
		return nil, err
	}
	s.notifier.publish(ctx, n)
	s.attachAuthors(ctx, []*model.Comment{comment})
	return comment, nil
}

type updateCommentFields struct {
	Content string `validate:"required,max=10000"`
}

func (s *EngagementService) UpdateComment(ctx context.Context, callerID, commentID, content string) (*model.Comment, error) {
	fields := updateCommentFields{Content: strings.TrimSpace(content)}
	if err := validate.Struct(fields); err != nil {
		return nil, validationError(err)
	}
	comment, err := s.store.Comments.Get(ctx, commentID)
	if err != nil {
		return nil, lookupErr(err, "comment", commentID)
	}
	if err := ensureOwner(callerID, comment.AuthorID, "comment"); err != nil {
		return nil, err
	}
	comment.Content = fields.Content
	comment.UpdatedAt = s.now()
	if err := s.store.Comments.UpdateContent(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	s.attachAuthors(ctx, []*model.Comment{comment})
	return comment, nil
}

func (s *EngagementService) DeleteComment(ctx context.Context, callerID, commentID string) error {
	comment, err := s.store.Comments.Get(ctx, commentID)
	if err != nil {
		return lookupErr(err, "comment", commentID)
	}
	if err := ensureOwner(callerID, comment.AuthorID, "comment"); err != nil {
		return err
	}
	if err := s.store.Comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// ListComments returns a post's comments newest first.
func (s *EngagementService) ListComments(ctx context.Context, postID string, page, pageSize int) ([]*model.Comment, error) {
	if _, err := s.store.Posts.Get(ctx, postID); err != nil {
		return nil, lookupErr(err, "post", postID)
	}
	offset, limit := s.bounds(page, pageSize)
	comments, err := s.store.Comments.ListByPost(ctx, postID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	s.attachAuthors(ctx, comments)
	return comments, nil
}

// attachAuthors is display-only; a cache failure leaves Author nil.
func (s *EngagementService) attachAuthors(ctx context.Context, comments []*model.Comment) {
	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.AuthorID
	}
	authors, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return
	}
	for _, c := range comments {
		c.Author = authors[c.AuthorID]
	}
}
