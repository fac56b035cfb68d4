package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	Get(ctx context.Context, id string) (*model.Comment, error)
	UpdateContent(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Comment, error)
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) Get(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Model(comment).Select("content", "updated_at").Updates(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{}).Error
}

// DeleteByPost removes every comment on postID.
func (r *commentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.Comment{})
	return res.RowsAffected, res.Error
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []postCount
	if err := r.db.WithContext(ctx).
		Model(&model.Comment{}).
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
