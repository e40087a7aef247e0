package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/habitlit/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger
)

// Config holds logger configuration
type Config struct {
	// Level is a charmbracelet/log level name. Empty means warn, or debug
	// when Debug is set.
	Level     string
	Debug     bool
	ConfigDir string
	// Stderr mirrors log output to stderr and lowers the default level to
	// info. The API server runs with it.
	Stderr bool
	// JSON switches both outputs to one JSON object per line.
	JSON bool
}

func (c Config) level() (log.Level, error) {
	switch {
	case c.Debug:
		return log.DebugLevel, nil
	case c.Level != "":
		lvl, err := log.ParseLevel(c.Level)
		if err != nil {
			return 0, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		return lvl, nil
	case c.Stderr:
		return log.InfoLevel, nil
	}
	return log.WarnLevel, nil
}

// Init installs the global logger writing to <ConfigDir>/logs through a
// rotating file. The returned closer flushes and closes the log file.
func Init(cfg Config) (io.Closer, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}

	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.LogFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	var writer io.Writer = fileWriter
	if cfg.Debug || cfg.Stderr {
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	formatter := log.TextFormatter
	if cfg.JSON {
		formatter = log.JSONFormatter
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
		Formatter:       formatter,
	})

	return fileWriter, nil
}

// With returns a child logger carrying the given key/value pairs. It returns
// a discarding logger when Init has not been called.
func With(keyvals ...interface{}) *log.Logger {
	if Logger == nil {
		return log.New(io.Discard)
	}
	return Logger.With(keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
