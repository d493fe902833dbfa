package photos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/docsnap/docsnap/internal/common"
	"github.com/docsnap/docsnap/internal/dbx"
	"github.com/docsnap/docsnap/internal/server/models"
)

// PostgresRepository implements photo metadata storage. Single-statement
// operations run on the bare handle; multi-row deletes go through dbx.WithTx.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository bound to the given database.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new photo row. Exactly one row must be affected.
func (r *PostgresRepository) Insert(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, filename, url, file_path, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	res, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.Filename, photo.URL, photo.FilePath, photo.Size, photo.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// SelectAll returns all photo rows ordered by created_at descending, so the
// newest capture comes first.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Photo, error) {
	query := ` SELECT id, filename, url, file_path, size, created_at from photos
		ORDER BY created_at DESC
		`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select photos: %w", err)
	}
	defer rows.Close()

	var result []*models.Photo
	for rows.Next() {
		var item models.Photo
		if err := rows.Scan(&item.ID, &item.Filename, &item.URL, &item.FilePath, &item.Size, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns the photo row for id, or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := ` SELECT id, filename, url, file_path, size, created_at from photos
		WHERE id=$1
		`

	result := &models.Photo{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&result.ID, &result.Filename, &result.URL, &result.FilePath, &result.Size, &result.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select photo: %w", err)
	}
	return result, nil
}

// Delete removes the rows with the given ids inside one transaction and
// reports how many rows went away. Missing ids are not an error; the
// notification stream may already have raced a concurrent delete.
func (r *PostgresRepository) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var total int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE id=$1`, id)
			if err != nil {
				return fmt.Errorf("failed to delete photo %s: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
