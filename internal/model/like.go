package model

import "time"

// Like 点赞；(user_id, post_id) 唯一，并发重复点赞由唯一索引裁决
type Like struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;index:idx_like_pair,unique,priority:1"`
	PostID    string    `json:"post_id" gorm:"type:varchar(36);not null;index:idx_like_pair,unique,priority:2;index:idx_like_post"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string { return "likes" }
