package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/storage"
)

const activityColumns = "id, name, created_at, updated_at, deleted_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (models.Activity, error) {
	var a models.Activity
	var deletedAt sql.NullTime
	if err := row.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt, &deletedAt); err != nil {
		return models.Activity{}, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return a, nil
}

func notFound(err error, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("activity %s: %w", id, storage.ErrNotFound)
	}
	return err
}

func liveNameTaken(ctx context.Context, tx *sql.Tx, name, exceptID string) (bool, error) {
	var taken bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM activities WHERE name_key = $1 AND deleted_at IS NULL AND id <> $2)",
		storage.NameKey(name), exceptID,
	).Scan(&taken)
	return taken, err
}

func (s *Store) AddActivity(ctx context.Context, name string) (models.Activity, error) {
	name, err := storage.NormalizeName(name)
	if err != nil {
		return models.Activity{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Activity{}, err
	}
	defer tx.Rollback()

	taken, err := liveNameTaken(ctx, tx, name, "")
	if err != nil {
		return models.Activity{}, err
	}
	if taken {
		return models.Activity{}, fmt.Errorf("%q: %w", name, storage.ErrDuplicateActivity)
	}

	now := time.Now().UTC()
	a := models.Activity{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO activities (id, name, name_key, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, NULL)`,
		a.ID, a.Name, storage.NameKey(a.Name), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to add activity: %w", err)
	}

	return a, tx.Commit()
}

func (s *Store) GetActivity(ctx context.Context, id string) (models.Activity, error) {
	a, err := scanActivity(s.db.QueryRowContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = $1 AND deleted_at IS NULL", id))
	if err != nil {
		return models.Activity{}, notFound(err, id)
	}
	return a, nil
}

func (s *Store) ListActivities(ctx context.Context) ([]models.Activity, error) {
	return s.listActivities(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE deleted_at IS NULL ORDER BY created_at, id")
}

func (s *Store) ListDeletedActivities(ctx context.Context) ([]models.Activity, error) {
	return s.listActivities(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC, id")
}

func (s *Store) listActivities(ctx context.Context, query string) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *Store) RenameActivity(ctx context.Context, id, name string) (models.Activity, error) {
	name, err := storage.NormalizeName(name)
	if err != nil {
		return models.Activity{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Activity{}, err
	}
	defer tx.Rollback()

	a, err := scanActivity(tx.QueryRowContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = $1 AND deleted_at IS NULL FOR UPDATE", id))
	if err != nil {
		return models.Activity{}, notFound(err, id)
	}

	taken, err := liveNameTaken(ctx, tx, name, id)
	if err != nil {
		return models.Activity{}, err
	}
	if taken {
		return models.Activity{}, fmt.Errorf("%q: %w", name, storage.ErrDuplicateActivity)
	}

	a.Name = name
	a.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE activities SET name = $1, name_key = $2, updated_at = $3 WHERE id = $4",
		a.Name, storage.NameKey(a.Name), a.UpdatedAt, id); err != nil {
		return models.Activity{}, fmt.Errorf("failed to rename activity: %w", err)
	}

	return a, tx.Commit()
}

func (s *Store) DeleteActivity(ctx context.Context, id string) (models.Activity, error) {
	now := time.Now().UTC()
	a, err := scanActivity(s.db.QueryRowContext(ctx, `
		UPDATE activities SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING `+activityColumns, now, id))
	if err != nil {
		return models.Activity{}, notFound(err, id)
	}
	return a, nil
}

func (s *Store) RestoreActivity(ctx context.Context, id string) (models.Activity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Activity{}, err
	}
	defer tx.Rollback()

	a, err := restoreActivity(ctx, tx, id)
	if err != nil {
		return models.Activity{}, err
	}
	return a, tx.Commit()
}

func (s *Store) UndoDeleteActivity(ctx context.Context) (models.Activity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Activity{}, err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM activities WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC LIMIT 1 FOR UPDATE").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, storage.ErrNothingToRestore
	}
	if err != nil {
		return models.Activity{}, err
	}

	a, err := restoreActivity(ctx, tx, id)
	if err != nil {
		return models.Activity{}, err
	}
	return a, tx.Commit()
}

func restoreActivity(ctx context.Context, tx *sql.Tx, id string) (models.Activity, error) {
	a, err := scanActivity(tx.QueryRowContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = $1 AND deleted_at IS NOT NULL", id))
	if err != nil {
		return models.Activity{}, notFound(err, id)
	}

	taken, err := liveNameTaken(ctx, tx, a.Name, id)
	if err != nil {
		return models.Activity{}, err
	}
	if taken {
		return models.Activity{}, fmt.Errorf("cannot restore %q: %w", a.Name, storage.ErrDuplicateActivity)
	}

	a.DeletedAt = nil
	a.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE activities SET deleted_at = NULL, updated_at = $1 WHERE id = $2",
		a.UpdatedAt, id); err != nil {
		return models.Activity{}, fmt.Errorf("failed to restore activity: %w", err)
	}
	return a, nil
}
