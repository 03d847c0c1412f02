package reminders

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/logger"
	"github.com/julianstephens/murmur/internal/models"
	"github.com/julianstephens/murmur/internal/notifier"
)

// Store is the part of the Record Store the manager needs.
type Store interface {
	AddReminder(ctx context.Context, r models.Reminder) (models.Reminder, error)
	GetReminder(ctx context.Context, id string) (models.Reminder, error)
	GetAllReminders(ctx context.Context) ([]models.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
	DeleteReminders(ctx context.Context, ids []string) error
}

// Manager adds, lists and deletes reminders and schedules their notifications.
// It keeps the last listed reminders as a cache for index-based deletion.
type Manager struct {
	store     Store
	scheduler notifier.Scheduler
	lead      time.Duration
	now       func() time.Time

	mu    sync.Mutex
	cache []models.Reminder
}

type Option func(*Manager)

// WithLeadTime sets how long before a reminder's date its notification fires.
func WithLeadTime(d time.Duration) Option {
	return func(m *Manager) { m.lead = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func New(store Store, scheduler notifier.Scheduler, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		scheduler: scheduler,
		lead:      constants.ReminderLeadTime,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// classify makes sure err carries class without wrapping it twice.
func classify(class, err error) error {
	if stderrors.Is(err, class) {
		return err
	}
	return errors.Wrap(class, err)
}

// Add stores a reminder and schedules its notification lead before date.
// Nothing is scheduled and the cache is untouched when the store write fails.
func (m *Manager) Add(ctx context.Context, title, description string, date time.Time) (models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved, err := m.store.AddReminder(ctx, models.Reminder{
		Title:       title,
		Description: description,
		Date:        date,
		CreatedAt:   m.now(),
	})
	if err != nil {
		err = classify(errors.ErrStoreWrite, err)
		logger.Error("Failed to add reminder", "title", title, "error", err)
		return models.Reminder{}, err
	}

	// Each call gets a fresh identifier, unrelated to the reminder's own
	m.scheduler.Schedule(saved.Notification(uuid.NewString(), m.lead))

	m.cache = append(m.cache, saved)
	logger.Info("Reminder added", "id", saved.ID, "date", saved.Date)
	return saved, nil
}

// List re-reads every reminder and replaces the cache. On a fetch failure the
// cache is cleared and the error is returned alongside the empty result.
func (m *Manager) List(ctx context.Context) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.GetAllReminders(ctx)
	if err != nil {
		err = classify(errors.ErrStoreFetch, err)
		logger.Error("Failed to list reminders", "error", err)
		m.cache = nil
		return []models.Reminder{}, err
	}

	m.cache = all
	return m.copyCache(), nil
}

// Get returns one reminder by id.
func (m *Manager) Get(ctx context.Context, id string) (models.Reminder, error) {
	r, err := m.store.GetReminder(ctx, id)
	if err != nil {
		if !stderrors.Is(err, errors.ErrNotFound) {
			err = classify(errors.ErrStoreFetch, err)
		}
		logger.Error("Failed to get reminder", "id", id, "error", err)
		return models.Reminder{}, err
	}
	return r, nil
}

// DeleteAt deletes the cached reminders at the given positions in one store
// batch. Out-of-range positions are skipped. Returns how many were deleted.
func (m *Manager) DeleteAt(ctx context.Context, indices ...int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[int]bool{}
	var valid []int
	for _, i := range indices {
		if i < 0 || i >= len(m.cache) || seen[i] {
			continue
		}
		seen[i] = true
		valid = append(valid, i)
	}
	if len(valid) == 0 {
		return 0, nil
	}

	ids := make([]string, len(valid))
	for n, i := range valid {
		ids[n] = m.cache[i].ID
	}

	if err := m.store.DeleteReminders(ctx, ids); err != nil {
		if !stderrors.Is(err, errors.ErrNotFound) {
			err = classify(errors.ErrStoreWrite, err)
		}
		logger.Error("Failed to delete reminders", "ids", ids, "error", err)
		return 0, err
	}

	// Highest index first so earlier positions stay valid
	sort.Sort(sort.Reverse(sort.IntSlice(valid)))
	for _, i := range valid {
		m.cache = append(m.cache[:i], m.cache[i+1:]...)
	}

	return len(valid), nil
}

// Delete removes the reminder with the given id from the store and the cache.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.DeleteReminder(ctx, id); err != nil {
		if !stderrors.Is(err, errors.ErrNotFound) {
			err = classify(errors.ErrStoreWrite, err)
		}
		logger.Error("Failed to delete reminder", "id", id, "error", err)
		return err
	}

	for i, r := range m.cache {
		if r.ID == id {
			m.cache = append(m.cache[:i], m.cache[i+1:]...)
			break
		}
	}
	return nil
}

// Cached returns a copy of the reminders from the last List, plus any added since.
func (m *Manager) Cached() []models.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyCache()
}

func (m *Manager) copyCache() []models.Reminder {
	out := make([]models.Reminder, len(m.cache))
	copy(out, m.cache)
	return out
}
