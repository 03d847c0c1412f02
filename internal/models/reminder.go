package models

import (
	"fmt"
	"time"
)

// Reminder is a user-authored note that fires a notification ahead of Date.
// Title and Description may be empty; Date may be in the past.
type Reminder struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotifyAt returns when the reminder's notification should fire: lead before
// Date, at minute resolution. A result in the past is kept as is.
func (r Reminder) NotifyAt(lead time.Duration) time.Time {
	return r.Date.Add(-lead).Truncate(time.Minute)
}

// Notification builds the alert for this reminder under the given identifier.
func (r Reminder) Notification(id string, lead time.Duration) Notification {
	return Notification{
		ID:     id,
		Title:  r.Title,
		Body:   r.Description,
		Sound:  SoundDefault,
		FireAt: r.NotifyAt(lead),
	}
}

// Validate only checks what the store needs. Content is not validated.
func (r Reminder) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("reminder date cannot be empty")
	}
	return nil
}
