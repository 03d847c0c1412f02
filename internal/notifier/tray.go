package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/models"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrTrayNotRunning means no tray application is available to show notifications.
var ErrTrayNotRunning = errors.New("murmur-tray is not running")

type WebhookPayload struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	Sound      string `json:"sound"`
	DurationMs uint32 `json:"duration_ms"`
}

// TraySender posts notifications to the tray application's local webhook.
type TraySender struct {
	client     *http.Client
	identifier string
	durationMs int
	maxRetries int
	retryDelay time.Duration
}

type TrayOption func(*TraySender)

func WithTrayIdentifier(id string) TrayOption {
	return func(t *TraySender) {
		if id != "" {
			t.identifier = id
		}
	}
}

func WithDuration(ms int) TrayOption {
	return func(t *TraySender) { t.durationMs = ms }
}

// WithRetry sets how many times a failed POST is retried and the first backoff delay.
func WithRetry(maxRetries int, delay time.Duration) TrayOption {
	return func(t *TraySender) {
		t.maxRetries = maxRetries
		t.retryDelay = delay
	}
}

func WithHTTPClient(c *http.Client) TrayOption {
	return func(t *TraySender) { t.client = c }
}

func NewTraySender(opts ...TrayOption) *TraySender {
	t := &TraySender{
		client:     &http.Client{Timeout: 5 * time.Second},
		identifier: constants.TrayAppIdentifier,
		durationMs: constants.NotificationDurationMs,
		maxRetries: constants.NotifyMaxRetries,
		retryDelay: constants.NotifyRetryDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TraySender) Send(ctx context.Context, n models.Notification) error {
	trayAppConfigPath, err := GetTrayAppConfigDir(t.identifier)
	if err != nil {
		return err
	}

	port, secret, err := findAndValidateTrayProcess(filepath.Join(trayAppConfigPath, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	sound := n.Sound
	if sound == "" {
		sound = models.SoundDefault
	}
	payload := WebhookPayload{
		Title:      n.Title,
		Text:       n.Body,
		Sound:      sound,
		DurationMs: uint32(t.durationMs),
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = t.retryDelay
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	exp.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(t.maxRetries)), ctx)
	return backoff.Retry(func() error {
		return t.post(ctx, port, secret, payload)
	}, policy)
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func GetTrayAppConfigDir(identifier string) (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, identifier)

	// settings.json may point the lockfile somewhere else
	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err == nil {
		var store struct {
			Settings struct {
				LockfileDir *string `json:"lockfile_dir"`
			} `json:"settings"`
		}
		if err := json.Unmarshal(data, &store); err == nil {
			if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
				return *store.Settings.LockfileDir, nil
			}
		}
	}

	return trayConfigDir, nil
}

// TrayStatus reports whether a tray application is reachable, for diagnostics.
func TrayStatus(identifier string) error {
	dir, err := GetTrayAppConfigDir(identifier)
	if err != nil {
		return err
	}
	_, _, err = findAndValidateTrayProcess(filepath.Join(dir, constants.NotifierLockfileName))
	return err
}

// findAndValidateTrayProcess reads the "port|pid|secret" lockfile and checks
// that pid belongs to a running tray process.
func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := parts[0]
	if strings.TrimSpace(port) == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", fmt.Errorf("%w (stale lockfile for PID %d)", ErrTrayNotRunning, pid)
	}

	if !strings.HasPrefix(process.Executable(), constants.TrayExecutable) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutable, process.Executable())
	}

	return port, secret, nil
}

func (t *TraySender) post(ctx context.Context, port string, secret string, payload WebhookPayload) error {
	url := fmt.Sprintf("http://127.0.0.1:%s", port)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return backoff.Permanent(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.TraySecretHeader, secret)

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	err = fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
	if res.StatusCode >= 400 && res.StatusCode < 500 {
		return backoff.Permanent(err)
	}
	return err
}
