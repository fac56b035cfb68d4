package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-graph/internal/model"
)

// FollowRepository is the outbound view of the follows edge table.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID string) (bool, error)
	Delete(ctx context.Context, followerID, followeeID string) (bool, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error)
	FolloweeIDs(ctx context.Context, followerID string) ([]string, error)
	CountFollowings(ctx context.Context, followerID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

// Create inserts the edge and reports whether a new row was written.
// 幂等：重复关注不报错，由 idx_follow_pair 唯一索引裁决并发
func (r *followRepository) Create(ctx context.Context, followerID, followeeID string) (bool, error) {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FolloweeID: followeeID, CreatedAt: time.Now()}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ?", followerID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followRepository) FolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) CountFollowings(ctx context.Context, followerID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", followerID).Count(&cnt).Error
	return cnt, err
}
