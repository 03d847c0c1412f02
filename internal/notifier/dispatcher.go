package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/errors"
	"github.com/julianstephens/murmur/internal/logger"
	"github.com/julianstephens/murmur/internal/models"
)

// Sender shows one notification to the user.
type Sender interface {
	Send(ctx context.Context, n models.Notification) error
}

// DueStore is the part of the store the Dispatcher works against.
type DueStore interface {
	GetDueNotifications(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
	MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error
	MarkNotificationFailed(ctx context.Context, id string, reason string, maxAttempts int) error
}

// Dispatcher delivers pending notifications whose fire time has passed.
type Dispatcher struct {
	store      DueStore
	sender     Sender
	maxRetries int
	batchSize  int
	now        func() time.Time
}

type DispatcherOption func(*Dispatcher)

// WithMaxRetries sets how many failed passes a notification gets before it is marked failed.
func WithMaxRetries(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxRetries = n
		}
	}
}

func WithBatchSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

func WithNow(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(store DueStore, sender Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:      store,
		sender:     sender,
		maxRetries: constants.NotifyMaxRetries,
		batchSize:  constants.NotifyBatchSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result counts the outcome of one delivery pass.
type Result struct {
	Delivered int
	Failed    int
}

// DeliverDue sends every pending notification with a fire time at or before now.
// Notifications whose time already passed when they were scheduled go out on
// the first pass.
func (d *Dispatcher) DeliverDue(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	due, err := d.store.GetDueNotifications(ctx, now, d.batchSize)
	if err != nil {
		return res, fmt.Errorf("failed to load due notifications: %w", err)
	}

	for _, n := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := d.sender.Send(ctx, n); err != nil {
			res.Failed++
			logger.Warn("Notification delivery failed", "id", n.ID, "attempt", n.Attempts+1, "error", err)
			if markErr := d.store.MarkNotificationFailed(ctx, n.ID, err.Error(), d.maxRetries); markErr != nil {
				logger.Error("Failed to record delivery failure", "id", n.ID, "error", markErr)
			}
			continue
		}

		if err := d.store.MarkNotificationDelivered(ctx, n.ID, d.now()); err != nil {
			// Delivered but not recorded; it will be sent again next pass
			logger.Error("Failed to mark notification delivered", "id", n.ID, "error", errors.Wrap(errors.ErrStoreWrite, err))
			continue
		}
		res.Delivered++
		logger.Info("Notification delivered", "id", n.ID, "title", n.Title)
	}

	return res, nil
}

// Run delivers due notifications immediately and then every interval until ctx ends.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := d.DeliverDue(ctx, d.now()); err != nil && ctx.Err() == nil {
			logger.Error("Delivery pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
