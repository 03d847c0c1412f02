package models

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestReminder_NotifyAt(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)

	tests := []struct {
		name string
		date time.Time
		lead time.Duration
		want time.Time
	}{
		{
			name: "one hour ahead",
			date: time.Date(2025, 1, 10, 9, 0, 0, 0, loc),
			lead: time.Hour,
			want: time.Date(2025, 1, 10, 8, 0, 0, 0, loc),
		},
		{
			name: "seconds are dropped",
			date: time.Date(2025, 1, 10, 9, 30, 45, 500, loc),
			lead: time.Hour,
			want: time.Date(2025, 1, 10, 8, 30, 0, 0, loc),
		},
		{
			name: "crosses midnight",
			date: time.Date(2025, 3, 1, 0, 15, 0, 0, loc),
			lead: time.Hour,
			want: time.Date(2025, 2, 28, 23, 15, 0, 0, loc),
		},
		{
			name: "past date stays in the past",
			date: time.Date(2000, 1, 1, 12, 0, 0, 0, loc),
			lead: time.Hour,
			want: time.Date(2000, 1, 1, 11, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reminder{Date: tt.date}
			if got := r.NotifyAt(tt.lead); !got.Equal(tt.want) {
				t.Errorf("NotifyAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReminder_Notification(t *testing.T) {
	r := Reminder{
		ID:          "r1",
		Title:       "Pay rent",
		Description: "due monthly",
		Date:        time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
	}

	n := r.Notification("n1", time.Hour)
	if n.ID != "n1" {
		t.Errorf("expected notification id n1, got %q", n.ID)
	}
	if n.Title != "Pay rent" || n.Body != "due monthly" {
		t.Errorf("unexpected content: %+v", n)
	}
	if n.Sound != SoundDefault {
		t.Errorf("expected default sound, got %q", n.Sound)
	}
	if !n.FireAt.Equal(time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected fire time %v", n.FireAt)
	}
}

func TestReminder_Validate(t *testing.T) {
	if err := (Reminder{}).Validate(); err == nil {
		t.Error("expected error for zero date")
	}
	if err := (Reminder{Date: time.Now()}).Validate(); err != nil {
		t.Errorf("empty title and description should be allowed: %v", err)
	}
}

func TestFileURLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voice note 1.m4a")

	u, err := FileURL(path)
	if err != nil {
		t.Fatalf("FileURL() error: %v", err)
	}
	if runtime.GOOS != "windows" && u[:8] != "file:///" {
		t.Errorf("expected file:/// prefix, got %q", u)
	}

	got, err := VoiceNoteEntity{AudioURL: u}.ResolvePath()
	if err != nil {
		t.Fatalf("ResolvePath() error: %v", err)
	}
	if got != path {
		t.Errorf("ResolvePath() = %q, want %q", got, path)
	}
}

func TestResolvePath_Rejects(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "just-a-name.m4a"},
		{"http scheme", "http://example.com/a.m4a"},
		{"bad escape", "file:///tmp/%zz.m4a"},
		{"relative", "file:a.m4a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (VoiceNoteEntity{AudioURL: tt.url}).ResolvePath(); err == nil {
				t.Errorf("expected error for %q", tt.url)
			}
		})
	}
}

func TestNotification_IsDue(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		n    Notification
		want bool
	}{
		{"pending and due", Notification{Status: NotificationPending, FireAt: now}, true},
		{"pending in the past", Notification{Status: NotificationPending, FireAt: now.Add(-24 * time.Hour)}, true},
		{"pending in the future", Notification{Status: NotificationPending, FireAt: now.Add(time.Second)}, false},
		{"already delivered", Notification{Status: NotificationDelivered, FireAt: now}, false},
		{"failed", Notification{Status: NotificationFailed, FireAt: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.IsDue(now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNotification_Validate(t *testing.T) {
	if err := (Notification{FireAt: time.Now()}).Validate(); err == nil {
		t.Error("expected error for empty id")
	}
	if err := (Notification{ID: "x"}).Validate(); err == nil {
		t.Error("expected error for empty fire time")
	}
	if err := (Notification{ID: "x", FireAt: time.Now()}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
