package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

// PostRepository 帖子存储；列表统一按 created_at DESC, id DESC 排序保证分页稳定
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Get(ctx context.Context, id string) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	ListByAuthors(ctx context.Context, authorIDs []string, offset, limit int) ([]*model.Post, error)
	List(ctx context.Context, query string, offset, limit int) ([]*model.Post, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Get(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Update writes title and content only; author_id is never part of an update.
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).
		Model(post).
		Select("title", "content", "updated_at").
		Updates(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{}).Error
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []string, offset, limit int) ([]*model.Post, error) {
	if len(authorIDs) == 0 {
		return []*model.Post{}, nil
	}
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// List returns all posts, optionally filtered by a title/content substring.
func (r *postRepository) List(ctx context.Context, query string, offset, limit int) ([]*model.Post, error) {
	q := r.db.WithContext(ctx).Model(&model.Post{})
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	var posts []*model.Post
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}
