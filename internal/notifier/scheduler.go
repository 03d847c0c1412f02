package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/logger"
	"github.com/julianstephens/murmur/internal/models"
)

// Scheduler accepts notifications for later delivery. Schedule never reports
// back; failures are logged by the implementation.
type Scheduler interface {
	Schedule(n models.Notification)
}

// Store is where the Outbox persists scheduled notifications.
type Store interface {
	AddNotification(ctx context.Context, n models.Notification) error
}

// Outbox is an asynchronous Scheduler. A single worker drains a buffered
// queue into the store's notifications table.
type Outbox struct {
	store        Store
	queue        chan models.Notification
	done         chan struct{}
	enabled      bool
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

type OutboxOption func(*Outbox)

// WithEnabled turns scheduling off when false; notifications are then dropped.
func WithEnabled(enabled bool) OutboxOption {
	return func(o *Outbox) { o.enabled = enabled }
}

func WithQueueSize(n int) OutboxOption {
	return func(o *Outbox) {
		if n > 0 {
			o.queue = make(chan models.Notification, n)
		}
	}
}

func NewOutbox(store Store, opts ...OutboxOption) *Outbox {
	o := &Outbox{
		store:        store,
		queue:        make(chan models.Notification, constants.OutboxQueueSize),
		done:         make(chan struct{}),
		enabled:      true,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	go o.run()
	return o
}

func (o *Outbox) Schedule(n models.Notification) {
	if !o.enabled {
		logger.Debug("Notifications disabled, dropping", "id", n.ID)
		return
	}
	if err := n.Validate(); err != nil {
		logger.Error("Invalid notification", "error", errors.Wrap(errors.ErrNotificationScheduling, err))
		return
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		logger.Warn("Outbox closed, dropping notification", "id", n.ID)
		return
	}

	select {
	case o.queue <- n:
	default:
		logger.Warn("Outbox queue full, dropping notification", "id", n.ID, "kind", errors.Kind(errors.ErrNotificationScheduling))
	}
}

func (o *Outbox) run() {
	defer close(o.done)
	for n := range o.queue {
		ctx, cancel := context.WithTimeout(context.Background(), o.writeTimeout)
		err := o.store.AddNotification(ctx, n)
		cancel()
		if err != nil {
			logger.Error("Failed to schedule notification",
				"id", n.ID,
				"error", errors.Wrap(errors.ErrNotificationScheduling, err),
			)
			continue
		}
		logger.Debug("Notification scheduled", "id", n.ID, "fire_at", n.FireAt)
	}
}

// Close stops accepting notifications and waits for the queue to drain or
// ctx to end. It is safe to call more than once.
func (o *Outbox) Close(ctx context.Context) error {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()

	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
