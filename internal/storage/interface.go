package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateActivity is returned when a live activity already has the same name (case-insensitive)
	ErrDuplicateActivity = errors.New("activity already exists")
	// ErrEmptyName is returned when an activity name is blank after trimming
	ErrEmptyName = errors.New("activity name cannot be empty")
	// ErrNothingToRestore is returned by UndoDeleteActivity when no deleted activity exists
	ErrNothingToRestore = errors.New("no deleted activity to restore")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSetting(ctx context.Context, key string) (models.Setting, bool, error)
	GetAllSettings(ctx context.Context) ([]models.Setting, error)
	InsertSetting(ctx context.Context, key, value string) error
	// UpdateSetting returns ErrNotFound when no record exists for key.
	UpdateSetting(ctx context.Context, key, value string) error
	// UpsertSettings writes all records in a single transaction keyed by setting name.
	UpsertSettings(ctx context.Context, settings []models.Setting) error

	// Activities
	AddActivity(ctx context.Context, name string) (models.Activity, error)
	GetActivity(ctx context.Context, id string) (models.Activity, error)
	ListActivities(ctx context.Context) ([]models.Activity, error)
	ListDeletedActivities(ctx context.Context) ([]models.Activity, error)
	RenameActivity(ctx context.Context, id, name string) (models.Activity, error)
	DeleteActivity(ctx context.Context, id string) (models.Activity, error)
	RestoreActivity(ctx context.Context, id string) (models.Activity, error)
	// UndoDeleteActivity restores the most recently deleted activity.
	UndoDeleteActivity(ctx context.Context) (models.Activity, error)

	// History
	AppendHistory(ctx context.Context, activity string, at time.Time) error
	ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	SetHistoryLimit(limit int)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by stores backed by versioned SQL migrations.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaStatus() (current, latest int, err error)
}

// NormalizeName trims an activity name and rejects blank names.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}
	return trimmed, nil
}

// NameKey is the case-insensitive uniqueness key for an activity name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FormatTimestamp encodes t for storage.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// ParseTimestamp decodes a value written by FormatTimestamp. Plain RFC 3339
// values are accepted as well.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(constants.TimestampFormat, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
