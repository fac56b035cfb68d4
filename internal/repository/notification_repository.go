package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListFor(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID, id string) (int64, error)
	Exists(ctx context.Context, recipientID, id string) (bool, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListFor(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]*model.Notification, error) {
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var res []*model.Notification
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) Exists(ctx context.Context, recipientID, id string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&cnt).Error
	return cnt, err
}
