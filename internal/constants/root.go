package constants

import "time"

const (
	AppName            = "murmur"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/murmur"
	DefaultDBPath      = "~/.config/murmur/murmur.db"
	DefaultConfigFile  = "~/.config/murmur/config.yaml"
	Version            = "v0.1.0"

	// EnvPrefix prefixes every environment override (MURMUR_AUDIO__DIR, ...)
	EnvPrefix = "MURMUR_"

	// MemoryDSN opens a throwaway in-memory store
	MemoryDSN = ":memory:"

	// DateTimeFormat is the display format for reminder dates
	DateTimeFormat = "2006-01-02 15:04"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "murmur-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.murmur"
	TrayExecutable         = "murmur-tray"
	TraySecretHeader       = "X-Murmur-Secret"
	NotifyPollInterval     = 30 * time.Second
	NotifyBatchSize        = 100
	OutboxQueueSize        = 64
)
