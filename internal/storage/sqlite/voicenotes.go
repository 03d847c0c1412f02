package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/models"
)

func (s *Store) AddVoiceNote(ctx context.Context, v models.VoiceNoteEntity) (models.VoiceNoteEntity, error) {
	if v.AudioURL == "" {
		return models.VoiceNoteEntity{}, fmt.Errorf("%w: voice note audio url cannot be empty", errors.ErrStoreWrite)
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voice_notes (id, audio_url, created_at)
		VALUES (?, ?, ?)
	`, v.ID, v.AudioURL, formatTime(v.CreatedAt))
	if err != nil {
		return models.VoiceNoteEntity{}, fmt.Errorf("%w: failed to insert voice note: %w", errors.ErrStoreWrite, err)
	}

	return v, nil
}

func scanVoiceNote(row rowScanner) (models.VoiceNoteEntity, error) {
	var v models.VoiceNoteEntity
	var createdAtStr string
	if err := row.Scan(&v.ID, &v.AudioURL, &createdAtStr); err != nil {
		return models.VoiceNoteEntity{}, err
	}
	createdAt, err := parseTime(createdAtStr)
	if err != nil {
		return models.VoiceNoteEntity{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	v.CreatedAt = createdAt
	return v, nil
}

func (s *Store) GetVoiceNote(ctx context.Context, id string) (models.VoiceNoteEntity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, audio_url, created_at FROM voice_notes WHERE id = ?
	`, id)

	v, err := scanVoiceNote(row)
	if err == sql.ErrNoRows {
		return models.VoiceNoteEntity{}, fmt.Errorf("voice note %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return models.VoiceNoteEntity{}, fmt.Errorf("%w: failed to get voice note: %w", errors.ErrStoreFetch, err)
	}
	return v, nil
}

func (s *Store) queryVoiceNotes(ctx context.Context, query string, args ...any) ([]models.VoiceNoteEntity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query voice notes: %w", errors.ErrStoreFetch, err)
	}
	defer rows.Close()

	notes := []models.VoiceNoteEntity{}
	for rows.Next() {
		v, err := scanVoiceNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan voice note: %w", errors.ErrStoreFetch, err)
		}
		notes = append(notes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating voice notes: %w", errors.ErrStoreFetch, err)
	}
	return notes, nil
}

func (s *Store) GetAllVoiceNotes(ctx context.Context) ([]models.VoiceNoteEntity, error) {
	return s.queryVoiceNotes(ctx, `
		SELECT id, audio_url, created_at FROM voice_notes
		ORDER BY created_at ASC, id ASC
	`)
}

func (s *Store) FindVoiceNotesByURL(ctx context.Context, audioURL string) ([]models.VoiceNoteEntity, error) {
	return s.queryVoiceNotes(ctx, `
		SELECT id, audio_url, created_at FROM voice_notes
		WHERE audio_url = ?
		ORDER BY created_at ASC, id ASC
	`, audioURL)
}

func (s *Store) DeleteVoiceNote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM voice_notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete voice note: %w", errors.ErrStoreWrite, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", errors.ErrStoreWrite, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("voice note %s: %w", id, errors.ErrNotFound)
	}
	return nil
}
