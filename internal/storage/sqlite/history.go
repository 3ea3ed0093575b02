package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/storage"
)

// AppendHistory records a pick and prunes the log to the configured limit.
// The entry's day is the calendar date of at in its own location.
func (s *Store) AppendHistory(ctx context.Context, activity string, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO history (id, activity, timestamp, day) VALUES (?, ?, ?, ?)",
		uuid.New().String(), activity, storage.FormatTimestamp(at), at.Format(constants.DateFormat))
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY timestamp DESC, id DESC LIMIT ?
		)`, s.historyLimit)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	return tx.Commit()
}

// ListHistory returns up to limit entries, newest first. A non-positive
// limit returns everything retained.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, activity, timestamp, day FROM history ORDER BY timestamp DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		var ts string
		if err := rows.Scan(&e.ID, &e.Activity, &ts, &e.Day); err != nil {
			return nil, err
		}
		if e.Timestamp, err = storage.ParseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp for history entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
