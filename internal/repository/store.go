package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories over one gorm handle. Atomic hands the callback a
// Store bound to a transaction so a group of writes commits or rolls back together.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Follows       FollowRepository
	Fans          FanRepository
	Posts         PostRepository
	Likes         LikeRepository
	Comments      CommentRepository
	Notifications NotificationRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Follows:       NewFollowRepository(db),
		Fans:          NewFanRepository(db),
		Posts:         NewPostRepository(db),
		Likes:         NewLikeRepository(db),
		Comments:      NewCommentRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// Atomic runs fn in a transaction. fn must use only the Store it is given.
func (s *Store) Atomic(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
