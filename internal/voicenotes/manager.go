package voicenotes

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/murmur/internal/audio"
	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/logger"
	"github.com/julianstephens/murmur/internal/models"
	"github.com/julianstephens/murmur/internal/notifier"
)

type State int

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	default:
		return "idle"
	}
}

// Store is the part of the Record Store the manager needs.
type Store interface {
	AddVoiceNote(ctx context.Context, v models.VoiceNoteEntity) (models.VoiceNoteEntity, error)
	GetVoiceNote(ctx context.Context, id string) (models.VoiceNoteEntity, error)
	GetAllVoiceNotes(ctx context.Context) ([]models.VoiceNoteEntity, error)
	FindVoiceNotesByURL(ctx context.Context, audioURL string) ([]models.VoiceNoteEntity, error)
	DeleteVoiceNote(ctx context.Context, id string) error
}

// Manager records, lists, plays and deletes voice notes. Only one recording
// and one playback stream exist at a time.
type Manager struct {
	store       Store
	scheduler   notifier.Scheduler
	recorder    audio.Recorder
	player      audio.Player
	dir         string
	settings    audio.Settings
	savedDelay  time.Duration
	removeFiles bool
	now         func() time.Time

	mu          sync.Mutex
	state       State
	session     audio.Session
	path        string
	notes       []models.VoiceNote
	playingID   string
	subscribers []func(models.VoiceNote)
}

type Option func(*Manager)

// WithDir sets where new recordings are written.
func WithDir(dir string) Option {
	return func(m *Manager) { m.dir = dir }
}

func WithSettings(s audio.Settings) Option {
	return func(m *Manager) { m.settings = s }
}

// WithSavedDelay sets how long after a recording stops the saved notification fires.
func WithSavedDelay(d time.Duration) Option {
	return func(m *Manager) { m.savedDelay = d }
}

// WithRemoveFiles makes Delete remove the audio file along with the record.
func WithRemoveFiles(remove bool) Option {
	return func(m *Manager) { m.removeFiles = remove }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func New(store Store, scheduler notifier.Scheduler, recorder audio.Recorder, player audio.Player, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		scheduler:  scheduler,
		recorder:   recorder,
		player:     player,
		dir:        filepath.Join(os.TempDir(), constants.AppName, constants.AudioDirName),
		settings:   audio.DefaultSettings(),
		savedDelay: constants.VoiceNoteSavedDelay,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func classify(class, err error) error {
	if stderrors.Is(err, class) {
		return err
	}
	return errors.Wrap(class, err)
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to be called with every newly saved voice note.
func (m *Manager) Subscribe(fn func(models.VoiceNote)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// StartRecording opens a recording into a new file. The manager moves to
// Recording only once the recorder has confirmed; on failure it stays Idle.
func (m *Manager) StartRecording(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Recording {
		return "", errors.ErrAlreadyRecording
	}

	if err := os.MkdirAll(m.dir, 0700); err != nil {
		err = errors.Wrap(errors.ErrRecordingDevice, fmt.Errorf("failed to create recordings directory: %w", err))
		logger.Error("Failed to start recording", "error", err)
		return "", err
	}

	path := filepath.Join(m.dir, uuid.NewString()+m.settings.Extension())
	session, err := m.recorder.Start(ctx, path, m.settings)
	if err != nil {
		err = classify(errors.ErrRecordingDevice, err)
		logger.Error("Failed to start recording", "path", path, "error", err)
		return "", err
	}

	m.state = Recording
	m.session = session
	m.path = path
	logger.Debug("Recording started", "path", path)
	return path, nil
}

// StopRecording finalizes the file, stores it and schedules the saved
// notification. The manager is Idle afterwards whatever the outcome.
func (m *Manager) StopRecording(ctx context.Context) (models.VoiceNote, error) {
	m.mu.Lock()

	if m.state != Recording {
		m.mu.Unlock()
		return models.VoiceNote{}, errors.ErrNotRecording
	}

	session, path := m.session, m.path
	m.state, m.session, m.path = Idle, nil, ""

	note, err := m.save(ctx, session, path)
	if err != nil {
		m.mu.Unlock()
		return models.VoiceNote{}, err
	}

	m.notes = append(m.notes, note)
	subscribers := append([]func(models.VoiceNote){}, m.subscribers...)
	m.mu.Unlock()

	for _, fn := range subscribers {
		fn(note)
	}
	return note, nil
}

func (m *Manager) save(ctx context.Context, session audio.Session, path string) (models.VoiceNote, error) {
	if err := session.Stop(); err != nil {
		err = classify(errors.ErrRecordingDevice, err)
		logger.Error("Failed to stop recording", "path", path, "error", err)
		return models.VoiceNote{}, err
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		err = errors.Wrap(errors.ErrRecordingDevice, fmt.Errorf("recording %s is missing or empty", path))
		logger.Error("Recording produced no audio", "path", path, "error", err)
		return models.VoiceNote{}, err
	}

	audioURL, err := models.FileURL(path)
	if err != nil {
		return models.VoiceNote{}, errors.Wrap(errors.ErrStoreWrite, err)
	}

	saved, err := m.store.AddVoiceNote(ctx, models.VoiceNoteEntity{AudioURL: audioURL, CreatedAt: m.now()})
	if err != nil {
		err = classify(errors.ErrStoreWrite, err)
		logger.Error("Failed to save voice note", "path", path, "error", err)
		return models.VoiceNote{}, err
	}

	// The saved notification reuses the note's identity
	m.scheduler.Schedule(models.Notification{
		ID:     saved.ID,
		Title:  constants.VoiceNoteSavedTitle,
		Body:   constants.VoiceNoteSavedBody,
		Sound:  models.SoundDefault,
		FireAt: m.now().Add(m.savedDelay),
	})

	logger.Info("Voice note saved", "id", saved.ID, "path", path)
	return models.VoiceNote{
		ID:        saved.ID,
		AudioURL:  saved.AudioURL,
		Path:      path,
		CreatedAt: saved.CreatedAt,
	}, nil
}

// List loads every voice note, dropping those whose URL does not resolve to a
// local path. The playing flag is kept for the note currently playing.
func (m *Manager) List(ctx context.Context) ([]models.VoiceNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entities, err := m.store.GetAllVoiceNotes(ctx)
	if err != nil {
		err = classify(errors.ErrStoreFetch, err)
		logger.Error("Failed to list voice notes", "error", err)
		m.notes = nil
		return []models.VoiceNote{}, err
	}

	notes := make([]models.VoiceNote, 0, len(entities))
	for _, e := range entities {
		path, err := e.ResolvePath()
		if err != nil {
			logger.Debug("Skipping voice note with unusable url", "id", e.ID, "error", err)
			continue
		}
		notes = append(notes, models.VoiceNote{
			ID:        e.ID,
			AudioURL:  e.AudioURL,
			Path:      path,
			IsPlaying: e.ID == m.playingID,
			CreatedAt: e.CreatedAt,
		})
	}

	m.notes = notes
	return m.copyNotes(), nil
}

// Cached returns a copy of the notes from the last List, plus any recorded since.
func (m *Manager) Cached() []models.VoiceNote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyNotes()
}

func (m *Manager) copyNotes() []models.VoiceNote {
	out := make([]models.VoiceNote, len(m.notes))
	copy(out, m.notes)
	return out
}

// Delete removes a voice note by id. Playback of it stops first.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entity, err := m.store.GetVoiceNote(ctx, id)
	if err != nil {
		if !stderrors.Is(err, errors.ErrNotFound) {
			err = classify(errors.ErrStoreFetch, err)
		}
		logger.Error("Failed to delete voice note", "id", id, "error", err)
		return err
	}
	return m.deleteLocked(ctx, entity)
}

// DeleteByURL deletes the first voice note stored with exactly audioURL.
func (m *Manager) DeleteByURL(ctx context.Context, audioURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	matches, err := m.store.FindVoiceNotesByURL(ctx, audioURL)
	if err != nil {
		err = classify(errors.ErrStoreFetch, err)
		logger.Error("Failed to find voice note", "url", audioURL, "error", err)
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("voice note %s: %w", audioURL, errors.ErrNotFound)
	}
	return m.deleteLocked(ctx, matches[0])
}

func (m *Manager) deleteLocked(ctx context.Context, entity models.VoiceNoteEntity) error {
	if err := m.store.DeleteVoiceNote(ctx, entity.ID); err != nil {
		if !stderrors.Is(err, errors.ErrNotFound) {
			err = classify(errors.ErrStoreWrite, err)
		}
		logger.Error("Failed to delete voice note", "id", entity.ID, "error", err)
		return err
	}

	for i, n := range m.notes {
		if n.ID == entity.ID {
			m.notes = append(m.notes[:i], m.notes[i+1:]...)
			break
		}
	}

	if m.playingID == entity.ID {
		if err := m.player.Pause(); err != nil {
			logger.Warn("Failed to stop playback", "id", entity.ID, "error", err)
		}
		m.playingID = ""
	}

	if m.removeFiles {
		path, err := entity.ResolvePath()
		if err == nil {
			err = os.Remove(path)
		}
		if err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove audio file", "id", entity.ID, "url", entity.AudioURL, "error", err)
		}
	}

	logger.Info("Voice note deleted", "id", entity.ID)
	return nil
}

// TogglePlayback pauses id if it is playing. Otherwise id starts on the single
// stream, replacing anything else. It returns whether id is now playing.
func (m *Manager) TogglePlayback(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("voice note id is empty: %w", errors.ErrNotFound)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playingID == id {
		if err := m.player.Pause(); err != nil {
			return true, fmt.Errorf("failed to pause playback: %w", err)
		}
		m.setPlayingLocked("")
		return false, nil
	}

	path := ""
	for _, n := range m.notes {
		if n.ID == id {
			path = n.Path
			break
		}
	}
	if path == "" {
		entity, err := m.store.GetVoiceNote(ctx, id)
		if err != nil {
			return false, err
		}
		if path, err = entity.ResolvePath(); err != nil {
			return false, err
		}
	}

	if err := m.player.Play(path); err != nil {
		// Play tears down the old stream before starting, so nothing plays now
		m.setPlayingLocked("")
		logger.Error("Failed to start playback", "id", id, "error", err)
		return false, fmt.Errorf("failed to start playback: %w", err)
	}
	m.setPlayingLocked(id)
	return true, nil
}

// PlaybackFinished clears the playing flag when id's stream ends by itself.
func (m *Manager) PlaybackFinished(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playingID == id {
		m.setPlayingLocked("")
	}
}

// Playing returns the id of the note currently playing, or "".
func (m *Manager) Playing() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playingID
}

func (m *Manager) setPlayingLocked(id string) {
	m.playingID = id
	for i := range m.notes {
		m.notes[i].IsPlaying = id != "" && m.notes[i].ID == id
	}
}
