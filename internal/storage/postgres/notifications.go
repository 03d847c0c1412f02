package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/models"
)

const notificationColumns = `id, title, body, sound, fire_at, status, attempts, last_error, created_at, delivered_at`

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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, n.ID, n.Title, n.Body, n.Sound, n.FireAt, string(n.Status), n.Attempts, n.LastError, n.CreatedAt)
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
		var status string
		var deliveredAt *time.Time
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Sound, &n.FireAt, &status,
			&n.Attempts, &n.LastError, &n.CreatedAt, &deliveredAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan notification: %w", errors.ErrStoreFetch, err)
		}
		n.Status = models.NotificationStatus(status)
		n.FireAt = n.FireAt.Local()
		n.CreatedAt = n.CreatedAt.Local()
		if deliveredAt != nil {
			t := deliveredAt.Local()
			n.DeliveredAt = &t
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating notifications: %w", errors.ErrStoreFetch, err)
	}
	return notifications, nil
}

func (s *Store) GetDueNotifications(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	return s.queryNotifications(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE status = $1 AND fire_at <= $2
		ORDER BY fire_at ASC, id ASC
		LIMIT $3
	`, string(models.NotificationPending), now, limit)
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
		UPDATE notifications SET status = $1, delivered_at = $2, attempts = attempts + 1
		WHERE id = $3
	`, string(models.NotificationDelivered), at, id)
	if err != nil {
		return fmt.Errorf("%w: failed to update notification: %w", errors.ErrStoreWrite, err)
	}
	return checkAffected(result, "notification", id)
}

func (s *Store) MarkNotificationFailed(ctx context.Context, id string, reason string, maxAttempts int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET
			attempts = attempts + 1,
			last_error = $1,
			status = CASE WHEN attempts + 1 >= $2 THEN $3 ELSE status END
		WHERE id = $4
	`, reason, maxAttempts, string(models.NotificationFailed), id)
	if err != nil {
		return fmt.Errorf("%w: failed to update notification: %w", errors.ErrStoreWrite, err)
	}
	return checkAffected(result, "notification", id)
}

func checkAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", errors.ErrStoreWrite, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, errors.ErrNotFound)
	}
	return nil
}
