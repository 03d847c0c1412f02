package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/murmur/internal/constants"
)

// Logger is the process-wide logger. Nil until Init or SetOutput; the
// package helpers are no-ops while it is nil.
var Logger *log.Logger

var file *lumberjack.Logger

type Config struct {
	Debug bool
	// Dir receives murmur.log and its rotated backups
	Dir string
}

// Init logs to a rotating file in cfg.Dir at Warn level. Debug lowers the
// level and copies every line to stderr with caller information.
func Init(cfg Config) error {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return err
	}

	file = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, constants.AppName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	var w io.Writer = file
	level := log.WarnLevel
	if cfg.Debug {
		w = io.MultiWriter(os.Stderr, file)
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
	return nil
}

// Path is the current log file, or "" when logging is not file-backed.
func Path() string {
	if file == nil {
		return ""
	}
	return file.Filename
}

// Close releases the log file.
func Close() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// SetOutput points the logger at w, dropping any log file. Used by tests.
func SetOutput(w io.Writer, level log.Level) {
	_ = Close()
	Logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Helper()
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Helper()
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Helper()
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Helper()
		Logger.Error(msg, keyvals...)
	}
}
