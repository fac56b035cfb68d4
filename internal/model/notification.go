package model

import "time"

const (
	VerbFollowed  = "followed you"
	VerbLiked     = "liked your post"
	VerbCommented = "commented on your post"
)

const (
	TargetUser = "user"
	TargetPost = "post"
)

// Target is the optional object a notification points at.
type Target struct {
	Type string
	ID   string
}

// Notification 通知；RecipientID 与 ActorID 永不相同，创建后仅 IsRead 可变
type Notification struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecipientID string    `json:"recipient_id" gorm:"type:varchar(36);not null;index:idx_notification_recipient,priority:1"`
	ActorID     string    `json:"actor_id" gorm:"type:varchar(36);not null"`
	Verb        string    `json:"verb" gorm:"type:varchar(64);not null"`
	TargetType  string    `json:"target_type,omitempty" gorm:"type:varchar(16);index:idx_notification_target,priority:1"`
	TargetID    string    `json:"target_id,omitempty" gorm:"type:varchar(36);index:idx_notification_target,priority:2"`
	IsRead      bool      `json:"is_read" gorm:"not null;default:false;index:idx_notification_recipient,priority:2"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_notification_recipient,priority:3"`

	Actor *UserSummary `json:"actor,omitempty" gorm:"-"`
}

func (Notification) TableName() string { return "notifications" }

// All lists every table the service owns, in migration order.
func All() []any {
	return []any{&User{}, &Follow{}, &Post{}, &Like{}, &Comment{}, &Notification{}}
}
