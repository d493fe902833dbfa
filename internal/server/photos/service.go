// Package photos implements the server-side photo workflow: blob upload,
// metadata insert, listing, and metadata-only deletion, with change events
// published after every successful write.
package photos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docsnap/docsnap/internal/common"
	"github.com/docsnap/docsnap/internal/logging"
	"github.com/docsnap/docsnap/internal/server/blob"
	"github.com/docsnap/docsnap/internal/server/models"
	"github.com/docsnap/docsnap/internal/server/realtime"
	photorepo "github.com/docsnap/docsnap/internal/server/repositories/photos"
)

// Notifier publishes change events to subscribers. The realtime.Hub
// satisfies this; tests use a recording fake.
type Notifier interface {
	Broadcast(event realtime.ChangeEvent)
}

// Service orchestrates photo persistence. The blob upload is strictly
// sequenced before the metadata insert, so no metadata row ever references
// a missing blob. The inverse is not transactional: an insert failure after
// a successful upload leaves an orphaned blob behind.
type Service struct {
	repo     photorepo.Repository
	store    blob.Store
	notifier Notifier
	logger   logging.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires the photo service with its collaborators.
func NewService(repo photorepo.Repository, store blob.Store, notifier Notifier, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Upload stores the encoded image bytes for one document side and records
// its metadata. The generated object key doubles as the originating
// filename, e.g. "document_front_1693412345678.jpg".
func (s *Service) Upload(ctx context.Context, side string, data []byte) (*models.Photo, error) {
	if side != "front" && side != "back" {
		return nil, fmt.Errorf("invalid side %q", side)
	}

	now := s.now()
	filename := fmt.Sprintf("document_%s_%d.jpg", side, now.UnixMilli())

	if err := s.store.Put(ctx, filename, data, "image/jpeg"); err != nil {
		s.logger.Error(ctx, "blob upload failed", "path", filename, "err", err)
		return nil, err
	}

	photo := &models.Photo{
		ID:        s.newID(),
		Filename:  filename,
		URL:       s.store.PublicURL(filename),
		FilePath:  filename,
		Size:      int64(len(data)),
		CreatedAt: now,
	}

	if err := s.repo.Insert(ctx, photo); err != nil {
		// The uploaded blob is not rolled back; it stays orphaned.
		s.logger.Error(ctx, "metadata insert failed after upload", "path", filename, "err", err)
		return nil, fmt.Errorf("%w: %v", common.ErrMetadataWrite, err)
	}

	s.notifier.Broadcast(realtime.ChangeEvent{Type: realtime.EventInsert, Photo: *photo})
	s.logger.Info(ctx, "photo stored", "id", photo.ID, "path", filename, "size", photo.Size)

	return photo, nil
}

// List returns all stored photos, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Photo, error) {
	return s.repo.SelectAll(ctx)
}

// Delete removes the metadata rows for the given ids and publishes a delete
// event per id. The underlying blobs are intentionally left in object
// storage; only the table rows go away.
func (s *Service) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := s.repo.Delete(ctx, ids); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelete, err)
	}

	for _, id := range ids {
		s.notifier.Broadcast(realtime.ChangeEvent{Type: realtime.EventDelete, Photo: models.Photo{ID: id}})
	}
	s.logger.Info(ctx, "photos deleted", "count", len(ids))

	return nil
}
