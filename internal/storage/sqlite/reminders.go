package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

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
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.Title, r.Description, formatTime(r.Date), formatTime(r.CreatedAt))
	if err != nil {
		return models.Reminder{}, fmt.Errorf("%w: failed to insert reminder: %w", errors.ErrStoreWrite, err)
	}

	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (models.Reminder, error) {
	var r models.Reminder
	var dateStr, createdAtStr string

	if err := row.Scan(&r.ID, &r.Title, &r.Description, &dateStr, &createdAtStr); err != nil {
		return models.Reminder{}, err
	}

	var err error
	if r.Date, err = parseTime(dateStr); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if r.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return r, nil
}

func (s *Store) GetReminder(ctx context.Context, id string) (models.Reminder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, date, created_at
		FROM reminders
		WHERE id = ?
	`, id)

	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return models.Reminder{}, fmt.Errorf("reminder %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return models.Reminder{}, fmt.Errorf("%w: failed to get reminder: %w", errors.ErrStoreFetch, err)
	}
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
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan reminder: %w", errors.ErrStoreFetch, err)
		}
		reminders = append(reminders, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating reminders: %w", errors.ErrStoreFetch, err)
	}

	return reminders, nil
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete reminder: %w", errors.ErrStoreWrite, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", errors.ErrStoreWrite, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("reminder %s: %w", id, errors.ErrNotFound)
	}

	return nil
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

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("%w: failed to delete reminders: %w", errors.ErrStoreWrite, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", errors.ErrStoreWrite, err)
	}
	if int(rowsAffected) != uniqueCount(ids) {
		return fmt.Errorf("deleting %d reminders matched %d: %w", uniqueCount(ids), rowsAffected, errors.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %w", errors.ErrStoreWrite, err)
	}
	return nil
}

func uniqueCount(ids []string) int {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
