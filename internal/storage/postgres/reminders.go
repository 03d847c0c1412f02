package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/models"
)

func (s *Store) AddReminder(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	if err := r.Validate(); err != nil {
		return models.Reminder{}, errors.Wrap(errors.ErrStoreWrite, err)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, title, description, date, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.ID, r.Title, r.Description, r.Date, r.CreatedAt)
	if err != nil {
		return models.Reminder{}, fmt.Errorf("%w: failed to insert reminder: %w", errors.ErrStoreWrite, err)
	}
	return r, nil
}

func (s *Store) GetReminder(ctx context.Context, id string) (models.Reminder, error) {
	var r models.Reminder
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, date, created_at
		FROM reminders
		WHERE id = $1
	`, id).Scan(&r.ID, &r.Title, &r.Description, &r.Date, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Reminder{}, fmt.Errorf("reminder %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return models.Reminder{}, fmt.Errorf("%w: failed to get reminder: %w", errors.ErrStoreFetch, err)
	}
	r.Date = r.Date.Local()
	r.CreatedAt = r.CreatedAt.Local()
	return r, nil
}

func (s *Store) GetAllReminders(ctx context.Context) ([]models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, date, created_at
		FROM reminders
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query reminders: %w", errors.ErrStoreFetch, err)
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		var r models.Reminder
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Date, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan reminder: %w", errors.ErrStoreFetch, err)
		}
		r.Date = r.Date.Local()
		r.CreatedAt = r.CreatedAt.Local()
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating reminders: %w", errors.ErrStoreFetch, err)
	}
	return reminders, nil
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete reminder: %w", errors.ErrStoreWrite, err)
	}
	return checkAffected(result, "reminder", id)
}

func (s *Store) DeleteReminders(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", errors.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	unique := map[string]struct{}{}
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("%w: failed to delete reminders: %w", errors.ErrStoreWrite, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", errors.ErrStoreWrite, err)
	}
	if int(n) != len(unique) {
		return fmt.Errorf("deleting %d reminders matched %d: %w", len(unique), n, errors.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %w", errors.ErrStoreWrite, err)
	}
	return nil
}
