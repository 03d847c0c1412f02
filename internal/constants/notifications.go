package constants

import "time"

const (
	// ReminderLeadTime is how long before a reminder's date its notification fires
	ReminderLeadTime = time.Hour

	// VoiceNoteSavedDelay is how long after a recording stops the "saved" notification fires
	VoiceNoteSavedDelay = time.Second

	VoiceNoteSavedTitle = "Recording saved"
	VoiceNoteSavedBody  = "Your new voice note is ready."
)
