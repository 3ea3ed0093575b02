package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/storage"
)

func (s *Store) GetSetting(ctx context.Context, key string) (models.Setting, bool, error) {
	var setting models.Setting
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT key, value, updated_at FROM settings WHERE key = ?", key,
	).Scan(&setting.Key, &setting.Value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Setting{}, false, nil
	}
	if err != nil {
		return models.Setting{}, false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}

	setting.UpdatedAt, err = storage.ParseTimestamp(updatedAt)
	if err != nil {
		return models.Setting{}, false, fmt.Errorf("failed to parse updated_at for setting %s: %w", key, err)
	}
	return setting, true, nil
}

func (s *Store) GetAllSettings(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value, updated_at FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []models.Setting
	for rows.Next() {
		var setting models.Setting
		var updatedAt string
		if err := rows.Scan(&setting.Key, &setting.Value, &updatedAt); err != nil {
			return nil, err
		}
		if setting.UpdatedAt, err = storage.ParseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at for setting %s: %w", setting.Key, err)
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

func (s *Store) InsertSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, storage.FormatTimestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to insert setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) UpdateSetting(ctx context.Context, key, value string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE settings SET value = ?, updated_at = ? WHERE key = ?",
		value, storage.FormatTimestamp(time.Now()), key)
	if err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("setting %s: %w", key, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) UpsertSettings(ctx context.Context, settings []models.Setting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, setting := range settings {
		updatedAt := setting.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, setting.Key, setting.Value, storage.FormatTimestamp(updatedAt)); err != nil {
			return fmt.Errorf("failed to upsert setting %s: %w", setting.Key, err)
		}
	}

	return tx.Commit()
}
