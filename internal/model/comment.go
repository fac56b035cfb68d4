package model

import "time"

type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PostID    string    `json:"post_id" gorm:"type:varchar(36);not null;index:idx_comment_post_created,priority:1"`
	AuthorID  string    `json:"author_id" gorm:"type:varchar(36);not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_comment_post_created,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *UserSummary `json:"author,omitempty" gorm:"-"`
}

func (Comment) TableName() string { return "comments" }
