package postgres

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
	err := s.db.QueryRowContext(ctx,
		"SELECT key, value, updated_at FROM settings WHERE key = $1", key,
	).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Setting{}, false, nil
	}
	if err != nil {
		return models.Setting{}, false, fmt.Errorf("failed to read setting %s: %w", key, err)
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
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

func (s *Store) InsertSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)",
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) UpdateSetting(ctx context.Context, key, value string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE settings SET value = $1, updated_at = $2 WHERE key = $3",
		value, time.Now().UTC(), key)
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
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, setting := range settings {
		updatedAt := setting.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, setting.Key, setting.Value, updatedAt); err != nil {
			return fmt.Errorf("failed to upsert setting %s: %w", setting.Key, err)
		}
	}

	return tx.Commit()
}
