package model

import "time"

// Follow 关注关系（A 关注 B）
// One table serves both directions: idx_follow_pair drives the outbound "following"
// view and idx_follow_followee the inverse "followers" view.
type Follow struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FollowerID string    `json:"follower_id" gorm:"type:varchar(36);not null;index:idx_follow_pair,unique,priority:1"`
	FolloweeID string    `json:"followee_id" gorm:"type:varchar(36);not null;index:idx_follow_pair,unique,priority:2;index:idx_follow_followee"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (Follow) TableName() string { return "follows" }
