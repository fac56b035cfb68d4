package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/pkg/metrics"
)

// RelationshipService 关系链服务：follows 单表，关注/粉丝两个视图
type RelationshipService interface {
	// Follow reports whether a new edge was created; a repeat follow is (false, nil).
	Follow(ctx context.Context, followerID, followeeID string) (bool, error)
	// Unfollow reports whether an edge was removed; a missing edge is (false, nil).
	Unfollow(ctx context.Context, followerID, followeeID string) (bool, error)
	FollowingOf(ctx context.Context, userID string) ([]string, error)
	FollowersOf(ctx context.Context, userID string) ([]string, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	Counts(ctx context.Context, userID string) (followers, following int64, err error)
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]*model.UserSummary, error)
	ListFans(ctx context.Context, userID string, page, pageSize int) ([]*model.UserSummary, error)
}

type relationshipService struct {
	store    *repository.Store
	notifier *NotificationService
	users    *cache.UserCache
	settings
}

func NewRelationshipService(store *repository.Store, notifier *NotificationService, users *cache.UserCache, opts ...Option) RelationshipService {
	return &relationshipService{store: store, notifier: notifier, users: users, settings: newSettings(opts)}
}

func (s *relationshipService) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if followerID == followeeID {
		return false, ErrFollowSelf
	}
	if _, err := s.store.Users.Get(ctx, followeeID); err != nil {
		return false, lookupErr(err, "user", followeeID)
	}

	var (
		created bool
		n       *model.Notification
	)
	err := s.store.Atomic(ctx, func(tx *repository.Store) error {
		var err error
		created, err = tx.Follows.Create(ctx, followerID, followeeID)
		if err != nil {
			return fmt.Errorf("create follow: %w", err)
		}
		if !created {
			return nil
		}
		n, err = s.notifier.notifyTx(ctx, tx, followeeID, followerID, model.VerbFollowed,
			&model.Target{Type: model.TargetUser, ID: followerID})
		return err
	})
	metrics.Observe("follow", err, created)
	if err != nil {
		return false, err
	}
	s.notifier.publish(ctx, n)
	return created, nil
}

func (s *relationshipService) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if _, err := s.store.Users.Get(ctx, followeeID); err != nil {
		return false, lookupErr(err, "user", followeeID)
	}
	var removed bool
	err := s.store.Atomic(ctx, func(tx *repository.Store) error {
		var err error
		removed, err = tx.Follows.Delete(ctx, followerID, followeeID)
		return err
	})
	metrics.Observe("unfollow", err, removed)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	return removed, nil
}

// FollowingOf reads the edge table on every call; membership is never cached.
func (s *relationshipService) FollowingOf(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.store.Follows.FolloweeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("following of %s: %w", userID, err)
	}
	return ids, nil
}

func (s *relationshipService) FollowersOf(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.store.Fans.FanIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("followers of %s: %w", userID, err)
	}
	return ids, nil
}

func (s *relationshipService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return s.store.Follows.Exists(ctx, followerID, followeeID)
}

func (s *relationshipService) Counts(ctx context.Context, userID string) (int64, int64, error) {
	followers, err := s.store.Fans.CountFans(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("count followers: %w", err)
	}
	following, err := s.store.Follows.CountFollowings(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("count following: %w", err)
	}
	return followers, following, nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]*model.UserSummary, error) {
	offset, limit := s.bounds(page, pageSize)
	items, err := s.store.Follows.ListFollowings(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.FolloweeID
	}
	return s.summaries(ctx, ids)
}

func (s *relationshipService) ListFans(ctx context.Context, userID string, page, pageSize int) ([]*model.UserSummary, error) {
	offset, limit := s.bounds(page, pageSize)
	items, err := s.store.Fans.ListFans(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.FollowerID
	}
	return s.summaries(ctx, ids)
}

// summaries keeps the order of ids.
func (s *relationshipService) summaries(ctx context.Context, ids []string) ([]*model.UserSummary, error) {
	byID, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	res := make([]*model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}
