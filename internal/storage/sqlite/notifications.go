package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/models"
)

func (s *Store) AddNotification(ctx context.Context, n models.Notification) error {
	if err := n.Validate(); err != nil {
		return errors.Wrap(errors.ErrStoreWrite, err)
	}
	if n.Status == "" {
		n.Status = models.NotificationPending
	}
	if n.Sound == "" {
		n.Sound = models.SoundDefault
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, title, body, sound, fire_at, status, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Body, n.Sound, formatTime(n.FireAt), string(n.Status), n.Attempts, n.LastError, formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("%w: failed to insert notification: %w", errors.ErrStoreWrite, err)
	}
	return nil
}

func (s *Store) queryNotifications(ctx context.Context, query string, args ...any) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query notifications: %w", errors.ErrStoreFetch, err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var status, fireAtStr, createdAtStr string
		var deliveredAtStr *string

		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Sound, &fireAtStr, &status,
			&n.Attempts, &n.LastError, &createdAtStr, &deliveredAtStr); err != nil {
			return nil, fmt.Errorf("%w: failed to scan notification: %w", errors.ErrStoreFetch, err)
		}

		n.Status = models.NotificationStatus(status)
		if n.FireAt, err = parseTime(fireAtStr); err != nil {
			return nil, fmt.Errorf("%w: failed to parse fire_at: %w", errors.ErrStoreFetch, err)
		}
		if n.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, fmt.Errorf("%w: failed to parse created_at: %w", errors.ErrStoreFetch, err)
		}
		if deliveredAtStr != nil {
			t, err := parseTime(*deliveredAtStr)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to parse delivered_at: %w", errors.ErrStoreFetch, err)
			}
			n.DeliveredAt = &t
		}

		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating notifications: %w", errors.ErrStoreFetch, err)
	}
	return notifications, nil
}

const notificationColumns = `id, title, body, sound, fire_at, status, attempts, last_error, created_at, delivered_at`

func (s *Store) GetDueNotifications(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	return s.queryNotifications(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE status = ? AND fire_at <= ?
		ORDER BY fire_at ASC, id ASC
		LIMIT ?
	`, string(models.NotificationPending), formatTime(now), limit)
}

func (s *Store) GetAllNotifications(ctx context.Context) ([]models.Notification, error) {
	return s.queryNotifications(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		ORDER BY fire_at ASC, id ASC
	`)
}

func (s *Store) MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET status = ?, delivered_at = ?, attempts = attempts + 1
		WHERE id = ?
	`, string(models.NotificationDelivered), formatTime(at), id)
	if err != nil {
		return fmt.Errorf("%w: failed to update notification: %w", errors.ErrStoreWrite, err)
	}
	return checkAffected(result, "notification", id)
}

func (s *Store) MarkNotificationFailed(ctx context.Context, id string, reason string, maxAttempts int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET
			attempts = attempts + 1,
			last_error = ?,
			status = CASE WHEN attempts + 1 >= ? THEN ? ELSE status END
		WHERE id = ?
	`, reason, maxAttempts, string(models.NotificationFailed), id)
	if err != nil {
		return fmt.Errorf("%w: failed to update notification: %w", errors.ErrStoreWrite, err)
	}
	return checkAffected(result, "notification", id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func checkAffected(result rowsAffecter, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", errors.ErrStoreWrite, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, errors.ErrNotFound)
	}
	return nil
}
