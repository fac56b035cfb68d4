package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

// FanRepository 粉丝视图：同一张 follows 表按 followee_id 反向索引读取，不再冗余一张 fans 表
type FanRepository interface {
	ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Follow, error)
	FanIDs(ctx context.Context, userID string) ([]string, error)
	CountFans(ctx context.Context, userID string) (int64, error)
}

type fanRepository struct{ db *gorm.DB }

func NewFanRepository(db *gorm.DB) FanRepository { return &fanRepository{db: db} }

func (r *fanRepository) ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("followee_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *fanRepository) FanIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followee_id = ?", userID).Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *fanRepository) CountFans(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followee_id = ?", userID).Count(&cnt).Error
	return cnt, err
}
