package model

import "time"

// Post 内容主体；AuthorID 创建后不可变更
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AuthorID  string    `json:"author_id" gorm:"type:varchar(36);not null;index:idx_post_author_created,priority:1"`
	Title     string    `json:"title" gorm:"type:varchar(200);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_post_author_created,priority:2;index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed at read time, never persisted.
	ContentHTML   string       `json:"content_html" gorm:"-"`
	Author        *UserSummary `json:"author,omitempty" gorm:"-"`
	LikesCount    int64        `json:"likes_count" gorm:"-"`
	CommentsCount int64        `json:"comments_count" gorm:"-"`
	Liked         bool         `json:"liked" gorm:"-"`
}

func (Post) TableName() string { return "posts" }
