package postgres

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
		INSERT INTO voice_notes (id, audio_url, created_at) VALUES ($1, $2, $3)
	`, v.ID, v.AudioURL, v.CreatedAt)
	if err != nil {
		return models.VoiceNoteEntity{}, fmt.Errorf("%w: failed to insert voice note: %w", errors.ErrStoreWrite, err)
	}
	return v, nil
}

func (s *Store) GetVoiceNote(ctx context.Context, id string) (models.VoiceNoteEntity, error) {
	var v models.VoiceNoteEntity
	err := s.db.QueryRowContext(ctx, `
		SELECT id, audio_url, created_at FROM voice_notes WHERE id = $1
	`, id).Scan(&v.ID, &v.AudioURL, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return models.VoiceNoteEntity{}, fmt.Errorf("voice note %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return models.VoiceNoteEntity{}, fmt.Errorf("%w: failed to get voice note: %w", errors.ErrStoreFetch, err)
	}
	v.CreatedAt = v.CreatedAt.Local()
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
		var v models.VoiceNoteEntity
		if err := rows.Scan(&v.ID, &v.AudioURL, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan voice note: %w", errors.ErrStoreFetch, err)
		}
		v.CreatedAt = v.CreatedAt.Local()
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
		WHERE audio_url = $1
		ORDER BY created_at ASC, id ASC
	`, audioURL)
}

func (s *Store) DeleteVoiceNote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM voice_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete voice note: %w", errors.ErrStoreWrite, err)
	}
	return checkAffected(result, "voice note", id)
}
