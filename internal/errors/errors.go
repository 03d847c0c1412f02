package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/murmur/internal/logger"
)

// Failure classes. Storage, recording and scheduling code wraps one of these
// with %w so callers can branch with errors.Is.
var (
	ErrStoreOpen              = stderrors.New("store open failure")
	ErrStoreWrite             = stderrors.New("store write failure")
	ErrStoreFetch             = stderrors.New("store fetch failure")
	ErrNotFound               = stderrors.New("record not found")
	ErrRecordingDevice        = stderrors.New("recording device failure")
	ErrNotificationScheduling = stderrors.New("notification scheduling failure")

	ErrAlreadyRecording = stderrors.New("a recording is already in progress")
	ErrNotRecording     = stderrors.New("no recording in progress")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrStoreOpen, "store_open"},
	{ErrStoreWrite, "store_write"},
	{ErrStoreFetch, "store_fetch"},
	{ErrNotFound, "not_found"},
	{ErrRecordingDevice, "recording_device"},
	{ErrNotificationScheduling, "notification_scheduling"},
	{ErrAlreadyRecording, "already_recording"},
	{ErrNotRecording, "not_recording"},
}

// Kind returns the failure class label of err, or "unknown".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if stderrors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}

// Wrap attaches a failure class to err, keeping both in the chain.
func Wrap(class error, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", class, err)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

var exit = os.Exit

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "kind", Kind(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		_ = logger.Close()
		exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	_ = logger.Close()
	exit(1)
}
