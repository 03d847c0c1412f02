package models

import (
	"fmt"
	"time"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationFailed    NotificationStatus = "failed"
)

// SoundDefault asks the desktop for its default alert sound.
const SoundDefault = "default"

// Notification is one scheduled local alert.
type Notification struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	Sound       string             `json:"sound"`
	FireAt      time.Time          `json:"fire_at"`
	Status      NotificationStatus `json:"status"`
	Attempts    int                `json:"attempts"`
	LastError   string             `json:"last_error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	DeliveredAt *time.Time         `json:"delivered_at,omitempty"`
}

func (n Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification id cannot be empty")
	}
	if n.FireAt.IsZero() {
		return fmt.Errorf("notification fire time cannot be empty")
	}
	return nil
}

// IsDue reports whether a pending notification should fire at now.
func (n Notification) IsDue(now time.Time) bool {
	return n.Status == NotificationPending && !n.FireAt.After(now)
}
