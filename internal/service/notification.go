package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/repository"
)

// UnreadNotificationLimit caps the notification feed at the ten most
// recent unread entries.
const UnreadNotificationLimit = 10

// NotificationService creates and reads notifications.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *slog.Logger
}

func NewNotificationService(notifications repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger,
	}
}

// Notify inserts a notification for userID. Notifications are a
// best-effort side effect: a storage fault is logged and swallowed so the
// triggering operation (posting an answer, casting a vote) still
// succeeds.
func (s *NotificationService) Notify(ctx context.Context, userID, content, link string) {
	n := &model.Notification{
		UserID:  userID,
		Content: content,
		Link:    link,
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		s.logger.Error("failed to create notification",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
	}
}

// Unread returns the user's unread notifications, newest first, capped at
// UnreadNotificationLimit.
func (s *NotificationService) Unread(ctx context.Context, userID string) ([]model.Notification, error) {
	notifications, err := s.notifications.ListUnreadNotifications(ctx, userID, UnreadNotificationLimit)
	if err != nil {
		return nil, fmt.Errorf("listing unread notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a notification as read. Only the addressee may do so;
// anyone else gets ok=false and the row is left untouched.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	ok, err := s.notifications.MarkNotificationRead(ctx, id, userID)
	if err != nil {
		return false, err
	}
	return ok, nil
}
