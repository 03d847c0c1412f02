package config

import (
	"runtime"

	"github.com/knadh/koanf/providers/confmap"

	"github.com/julianstephens/murmur/internal/constants"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"storage": map[string]interface{}{
			"path": constants.DefaultDBPath,
		},
		"log": map[string]interface{}{
			"debug": false,
		},
		"audio": map[string]interface{}{
			"dir":              constants.DefaultConfigDir + "/" + constants.AudioDirName,
			"ffmpeg_path":      constants.DefaultFFmpegPath,
			"ffplay_path":      constants.DefaultFFplayPath,
			"input_format":     defaultInputFormat(),
			"input_device":     defaultInputDevice(),
			"remove_on_delete": true,
		},
		"notifications": map[string]interface{}{
			"enabled":         true,
			"lead_time":       "1h",
			"saved_delay":     "1s",
			"duration_ms":     constants.NotificationDurationMs,
			"max_retries":     constants.NotifyMaxRetries,
			"retry_delay":     constants.NotifyRetryDelay.String(),
			"poll_interval":   constants.NotifyPollInterval.String(),
			"tray_identifier": constants.TrayAppIdentifier,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return constants.DefaultConfigFile
}

// defaultInputFormat is the ffmpeg capture backend for this platform.
func defaultInputFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "pulse"
	}
}

func defaultInputDevice() string {
	switch runtime.GOOS {
	case "darwin":
		return ":0"
	case "windows":
		return "audio=default"
	default:
		return "default"
	}
}
