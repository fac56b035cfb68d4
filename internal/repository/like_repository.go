package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-graph/internal/model"
)

type LikeRepository interface {
	Create(ctx context.Context, like *model.Like) (bool, error)
	Delete(ctx context.Context, userID, postID string) (bool, error)
	DeleteByPost(ctx context.Context, postID string) error
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

type likeRepository struct{ db *gorm.DB }

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

// Create reports false when (user_id, post_id) already exists. ON CONFLICT DO NOTHING
// keeps the surrounding transaction usable on postgres, where a raised unique
// violation would abort it.
func (r *likeRepository) Create(ctx context.Context, like *model.Like) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "post_id"}}, DoNothing: true}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, postID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *likeRepository) DeleteByPost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.Like{}).Error
}

type postCount struct {
	PostID string
	Count  int64
}

func (r *likeRepository) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []postCount
	if err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = row.Count
	}
	return out, nil
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
