package sqlite

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

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanActivity(row rowScanner) (models.Activity, error) {
	var a models.Activity
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&a.ID, &a.Name, &createdAt, &updatedAt, &deletedAt); err != nil {
		return models.Activity{}, err
	}

	var err error
	if a.CreatedAt, err = storage.ParseTimestamp(createdAt); err != nil {
		return models.Activity{}, fmt.Errorf("failed to parse created_at for activity %s: %w", a.ID, err)
	}
	if a.UpdatedAt, err = storage.ParseTimestamp(updatedAt); err != nil {
		return models.Activity{}, fmt.Errorf("failed to parse updated_at for activity %s: %w", a.ID, err)
	}
	if deletedAt.Valid {
		t, err := storage.ParseTimestamp(deletedAt.String)
		if err != nil {
			return models.Activity{}, fmt.Errorf("failed to parse deleted_at for activity %s: %w", a.ID, err)
		}
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

// liveNameTaken reports whether a live activity other than exceptID uses name.
func liveNameTaken(ctx context.Context, q querier, name, exceptID string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT count(*) FROM activities WHERE name_key = ? AND deleted_at IS NULL AND id != ?",
		storage.NameKey(name), exceptID,
	).Scan(&n)
	return n > 0, err
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

	now := time.Now()
	a := models.Activity{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO activities (id, name, name_key, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, NULL)`,
		a.ID, a.Name, storage.NameKey(a.Name), storage.FormatTimestamp(a.CreatedAt), storage.FormatTimestamp(a.UpdatedAt))
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to add activity: %w", err)
	}

	return a, tx.Commit()
}

func (s *Store) GetActivity(ctx context.Context, id string) (models.Activity, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = ? AND deleted_at IS NULL", id)
	a, err := scanActivity(row)
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
		"SELECT "+activityColumns+" FROM activities WHERE id = ? AND deleted_at IS NULL", id))
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
	a.UpdatedAt = time.Now()
	if _, err := tx.ExecContext(ctx,
		"UPDATE activities SET name = ?, name_key = ?, updated_at = ? WHERE id = ?",
		a.Name, storage.NameKey(a.Name), storage.FormatTimestamp(a.UpdatedAt), id); err != nil {
		return models.Activity{}, fmt.Errorf("failed to rename activity: %w", err)
	}

	return a, tx.Commit()
}

func (s *Store) DeleteActivity(ctx context.Context, id string) (models.Activity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Activity{}, err
	}
	defer tx.Rollback()

	a, err := scanActivity(tx.QueryRowContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = ? AND deleted_at IS NULL", id))
	if err != nil {
		return models.Activity{}, notFound(err, id)
	}

	now := time.Now()
	a.DeletedAt = &now
	a.UpdatedAt = now
	if _, err := tx.ExecContext(ctx,
		"UPDATE activities SET deleted_at = ?, updated_at = ? WHERE id = ?",
		storage.FormatTimestamp(now), storage.FormatTimestamp(now), id); err != nil {
		return models.Activity{}, fmt.Errorf("failed to delete activity: %w", err)
	}

	return a, tx.Commit()
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
		"SELECT id FROM activities WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC LIMIT 1").Scan(&id)
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

func restoreActivity(ctx context.Context, q querier, id string) (models.Activity, error) {
	a, err := scanActivity(q.QueryRowContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = ? AND deleted_at IS NOT NULL", id))
	if err != nil {
		return models.Activity{}, notFound(err, id)
	}

	taken, err := liveNameTaken(ctx, q, a.Name, id)
	if err != nil {
		return models.Activity{}, err
	}
	if taken {
		return models.Activity{}, fmt.Errorf("cannot restore %q: %w", a.Name, storage.ErrDuplicateActivity)
	}

	a.DeletedAt = nil
	a.UpdatedAt = time.Now()
	if _, err := q.ExecContext(ctx,
		"UPDATE activities SET deleted_at = NULL, updated_at = ? WHERE id = ?",
		storage.FormatTimestamp(a.UpdatedAt), id); err != nil {
		return models.Activity{}, fmt.Errorf("failed to restore activity: %w", err)
	}
	return a, nil
}
