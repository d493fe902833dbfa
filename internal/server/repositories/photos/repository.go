// Package photos provides storage for captured-photo metadata records.
package photos

import (
	"context"

	"github.com/docsnap/docsnap/internal/server/models"
)

// Repository is the persistence contract for photo metadata rows.
type Repository interface {
	// Insert stores a new photo record. The caller assigns the ID.
	Insert(ctx context.Context, photo *models.Photo) error

	// SelectAll returns every photo record, most recent first.
	SelectAll(ctx context.Context) ([]*models.Photo, error)

	// GetByID returns a single photo record, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Photo, error)

	// Delete removes the records with the given ids. Ids that do not exist
	// are ignored; the returned count says how many rows were removed.
	Delete(ctx context.Context, ids []string) (int64, error)
}
