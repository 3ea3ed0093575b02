package constants

import "time"

const (
	AppName            = "riseroll"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/riseroll/riseroll.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Reset boundary: the cycle restarts at 00:01 local time on the day after the last pick.
	ResetHour   = 0
	ResetMinute = 1

	// ReadyToRoll is shown when no pick has been made since the last reset
	ReadyToRoll = "Ready to roll!"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "riseroll-"
	BackupFileSuffix = ".db"

	// Instance guard
	LockfileName = "riseroll.lock"

	// DefaultFlushTimeout bounds how long shutdown waits for pending writes
	DefaultFlushTimeout = 5 * time.Second
)

// TimestampFormat is a fixed-width UTC timestamp so stored values sort as text.
const TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"
