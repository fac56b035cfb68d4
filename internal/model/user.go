package model

import "time"

// User 用户（关系链两端）
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username       string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email          string    `json:"email,omitempty" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password       string    `json:"-" gorm:"type:varchar(255);not null"`
	Bio            string    `json:"bio" gorm:"type:text"`
	ProfilePicture string    `json:"profile_picture" gorm:"type:varchar(512)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// UserSummary is the public projection attached to posts, comments and notifications.
type UserSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}
