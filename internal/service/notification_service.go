package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/pubsub"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/pkg/logger"
	"github.com/d60-Lab/social-graph/pkg/metrics"
)

// NotificationService is the only writer of notifications. Self-notification
// suppression lives here and nowhere else.
type NotificationService struct {
	store     *repository.Store
	users     *cache.UserCache
	publisher *pubsub.Publisher
	settings
}

func NewNotificationService(store *repository.Store, users *cache.UserCache, publisher *pubsub.Publisher, opts ...Option) *NotificationService {
	return &NotificationService{store: store, users: users, publisher: publisher, settings: newSettings(opts)}
}

// Notify records one event for recipient. It returns (nil, nil) when the actor is
// the recipient.
func (s *NotificationService) Notify(ctx context.Context, recipientID, actorID, verb string, target *model.Target) (*model.Notification, error) {
	n, err := s.notifyTx(ctx, s.store, recipientID, actorID, verb, target)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, n)
	return n, nil
}

// notifyTx writes through tx so the notification commits with the action that
// caused it. Callers publish after commit.
func (s *NotificationService) notifyTx(ctx context.Context, tx *repository.Store, recipientID, actorID, verb string, target *model.Target) (*model.Notification, error) {
	if recipientID == actorID {
		metrics.NotificationsSuppressed.Inc()
		return nil, nil
	}
	n := &model.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		ActorID:     actorID,
		Verb:        verb,
		CreatedAt:   s.now(),
	}
	if target != nil {
		n.TargetType = target.Type
		n.TargetID = target.ID
	}
	if err := tx.Notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(verb).Inc()
	return n, nil
}

// publish is best effort: the row is already committed.
func (s *NotificationService) publish(ctx context.Context, n *model.Notification) {
	if n == nil {
		return
	}
	if err := s.publisher.PublishNotification(ctx, n); err != nil {
		metrics.PublishErrors.Inc()
		logger.Warn("publish notification failed",
			zap.String("notification_id", n.ID),
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err))
	}
}

// ListFor returns recipient's notifications newest first, with actor summaries.
func (s *NotificationService) ListFor(ctx context.Context, recipientID string, unreadOnly bool, page, pageSize int) ([]*model.Notification, error) {
	offset, limit := s.bounds(page, pageSize)
	items, err := s.store.Notifications.ListFor(ctx, recipientID, unreadOnly, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	ids := make([]string, len(items))
	for i, n := range items {
		ids[i] = n.ActorID
	}
	actors, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, n := range items {
		n.Actor = actors[n.ActorID]
	}
	return items, nil
}

// MarkAllRead flips every unread notification of recipient and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	n, err := s.store.Notifications.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}

// MarkRead marks one notification read. Notifications of other users are NotFound;
// one that is already read is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, id string) error {
	changed, err := s.store.Notifications.MarkRead(ctx, recipientID, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if changed > 0 {
		return nil
	}
	ok, err := s.store.Notifications.Exists(ctx, recipientID, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !ok {
		return notFound("notification", id)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	n, err := s.store.Notifications.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return n, nil
}
