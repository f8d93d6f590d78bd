package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/repository"
)

var _ repository.NotificationRepository = (*DB)(nil)

func (db *DB) CreateNotification(ctx context.Context, notification *model.Notification) error {
	notification.ID = xid.New().String()
	notification.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, content, link, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		notification.ID,
		notification.UserID,
		notification.Content,
		notification.Link,
		notification.IsRead,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting notification: %w", err)
	}
	return nil
}

func (db *DB) ListUnreadNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, content, link, is_read, created_at
		 FROM notifications
		 WHERE user_id = ? AND is_read = 0
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing unread notifications for %s: %w", userID, err)
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0, limit)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flips the read flag if, and only if, userID is the
// addressee. A cross-user attempt returns (false, nil) and mutates nothing.
func (db *DB) MarkNotificationRead(ctx context.Context, id, userID string) (bool, error) {
	var addressee string
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM notifications WHERE id = ?`, id,
	).Scan(&addressee)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, apperror.NotFound("notification", id)
		}
		return false, fmt.Errorf("sqlite: getting notification %s: %w", id, err)
	}

	if addressee != userID {
		return false, nil
	}

	if _, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("sqlite: marking notification %s read: %w", id, err)
	}
	return true, nil
}
