package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/riseroll/internal/constants"
)

// Logger is nil until Init runs; every helper is a no-op before then.
var Logger *log.Logger

// Config selects the log level and where the rotating file lives.
type Config struct {
	Debug     bool
	ConfigDir string
}

// Init opens logs/riseroll.log under ConfigDir and installs the global Logger.
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.AppName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.WarnLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	// Stay silent on stderr unless debugging; the TUI owns the terminal.
	var writer io.Writer = fileWriter
	if cfg.Debug {
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})

	return nil
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

// Component tags every entry with fixed key/value pairs. It resolves the
// global Logger at call time, so it may be created before Init.
type Component struct {
	keyvals []interface{}
}

// With returns a Component that prefixes entries with keyvals.
func With(keyvals ...interface{}) *Component {
	return &Component{keyvals: keyvals}
}

func (c *Component) logger() *log.Logger {
	if Logger == nil {
		return nil
	}
	if c == nil || len(c.keyvals) == 0 {
		return Logger
	}
	return Logger.With(c.keyvals...)
}

func (c *Component) Debug(msg string, keyvals ...interface{}) {
	if l := c.logger(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

func (c *Component) Info(msg string, keyvals ...interface{}) {
	if l := c.logger(); l != nil {
		l.Info(msg, keyvals...)
	}
}

func (c *Component) Warn(msg string, keyvals ...interface{}) {
	if l := c.logger(); l != nil {
		l.Warn(msg, keyvals...)
	}
}

func (c *Component) Error(msg string, keyvals ...interface{}) {
	if l := c.logger(); l != nil {
		l.Error(msg, keyvals...)
	}
}

// Fatal logs a fatal error and exits
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
