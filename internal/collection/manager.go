// Package collection maintains the dashboard's live mirror of the stored
// photo set, the user's selection, and the export/print entry points.
package collection

import (
	"context"
	"fmt"
	"sync"

	clientmodels "github.com/docsnap/docsnap/internal/client/models"
	"github.com/docsnap/docsnap/internal/common"
	"github.com/docsnap/docsnap/internal/export"
	"github.com/docsnap/docsnap/internal/logging"
	"github.com/docsnap/docsnap/internal/printview"
)

// Remote is the slice of the server API the manager needs.
type Remote interface {
	ListPhotos(ctx context.Context) ([]clientmodels.Photo, error)
	DeletePhotos(ctx context.Context, ids []string) error
}

// Exporter renders PDFs from photo records.
type Exporter interface {
	PhotosPDF(ctx context.Context, photos []clientmodels.Photo) (*export.Document, error)
	DocumentPDF(ctx context.Context, bundle *clientmodels.Bundle) (*export.Document, error)
}

// Confirmer gates destructive operations behind a user prompt.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Manager mirrors the server-side photo collection, most recent first. It is
// safe for concurrent use: the change feed applies events from its own
// goroutine while the UI reads and mutates the selection.
type Manager struct {
	remote    Remote
	exporter  Exporter
	surface   printview.Surface
	confirmer Confirmer
	logger    logging.Logger

	mu        sync.Mutex
	byID      map[string]clientmodels.Photo
	order     []string
	selection map[string]struct{}
}

func NewManager(remote Remote, exporter Exporter, surface printview.Surface, confirmer Confirmer, logger logging.Logger) *Manager {
	return &Manager{
		remote:    remote,
		exporter:  exporter,
		surface:   surface,
		confirmer: confirmer,
		logger:    logger,
		byID:      make(map[string]clientmodels.Photo),
		selection: make(map[string]struct{}),
	}
}

// Load replaces the mirror with the server's current photo list. The server
// already orders newest first. Selection is reset.
func (m *Manager) Load(ctx context.Context) error {
	photos, err := m.remote.ListPhotos(ctx)
	if err != nil {
		return fmt.Errorf("load photos: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID = make(map[string]clientmodels.Photo, len(photos))
	m.order = m.order[:0]
	m.selection = make(map[string]struct{})
	for _, p := range photos {
		m.byID[p.ID] = p
		m.order = append(m.order, p.ID)
	}
	return nil
}

// Apply folds one change-feed event into the mirror. Events are idempotent:
// a duplicate insert or a delete for an unknown id is a no-op, so feed
// replays and races with Load are harmless.
func (m *Manager) Apply(ev clientmodels.ChangeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Type {
	case clientmodels.ChangeInsert:
		if _, ok := m.byID[ev.Photo.ID]; ok {
			return
		}
		m.byID[ev.Photo.ID] = ev.Photo
		m.order = append([]string{ev.Photo.ID}, m.order...)
	case clientmodels.ChangeDelete:
		m.removeLocked(ev.Photo.ID)
	}
}

// removeLocked drops one photo and prunes it from the selection. Caller
// holds m.mu.
func (m *Manager) removeLocked(id string) {
	if _, ok := m.byID[id]; !ok {
		return
	}
	delete(m.byID, id)
	delete(m.selection, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Photos returns a snapshot of the mirror, most recent first.
func (m *Manager) Photos() []clientmodels.Photo {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]clientmodels.Photo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Get looks up one photo by id.
func (m *Manager) Get(id string) (clientmodels.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return clientmodels.Photo{}, common.ErrNotFound
	}
	return p, nil
}

// Len reports the mirror size.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// Toggle flips the selection state of one photo. Selecting an id that is
// not in the mirror is refused, keeping the selection a subset of the
// collection.
func (m *Manager) Toggle(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return common.ErrNotFound
	}
	if _, ok := m.selection[id]; ok {
		delete(m.selection, id)
	} else {
		m.selection[id] = struct{}{}
	}
	return nil
}

// SelectAll selects every photo currently in the mirror.
func (m *Manager) SelectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.byID {
		m.selection[id] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (m *Manager) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection = make(map[string]struct{})
}

// IsSelected reports the selection state of one photo.
func (m *Manager) IsSelected(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.selection[id]
	return ok
}

// Selected returns the selected ids in collection order.
func (m *Manager) Selected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.selection))
	for _, id := range m.order {
		if _, ok := m.selection[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// DeleteOne removes a single photo after user confirmation: server first,
// mirror second. A server failure leaves the mirror untouched.
func (m *Manager) DeleteOne(ctx context.Context, id string) error {
	if _, err := m.Get(id); err != nil {
		return err
	}
	if !m.confirmer.Confirm("Delete this photo?") {
		return nil
	}

	if err := m.remote.DeletePhotos(ctx, []string{id}); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelete, err)
	}

	m.mu.Lock()
	m.removeLocked(id)
	m.mu.Unlock()
	return nil
}

// DeleteSelected removes every selected photo after a single confirmation.
// With an empty selection it does nothing.
func (m *Manager) DeleteSelected(ctx context.Context) error {
	ids := m.Selected()
	if len(ids) == 0 {
		return nil
	}
	if !m.confirmer.Confirm(fmt.Sprintf("Delete %d selected photo(s)?", len(ids))) {
		return nil
	}

	if err := m.remote.DeletePhotos(ctx, ids); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelete, err)
	}

	m.mu.Lock()
	for _, id := range ids {
		m.removeLocked(id)
	}
	m.mu.Unlock()
	return nil
}

// photosFor resolves ids to photo records in collection order, skipping ids
// no longer present.
func (m *Manager) photosFor(ids []string) []clientmodels.Photo {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]clientmodels.Photo, 0, len(ids))
	for _, id := range m.order {
		if _, ok := want[id]; ok {
			out = append(out, m.byID[id])
		}
	}
	return out
}

// ExportPDF renders the given photos into a multi-page PDF, in collection
// order.
func (m *Manager) ExportPDF(ctx context.Context, ids []string) (*export.Document, error) {
	return m.exporter.PhotosPDF(ctx, m.photosFor(ids))
}

// ExportDocumentPDF renders the verification sheet for a capture bundle.
func (m *Manager) ExportDocumentPDF(ctx context.Context, bundle *clientmodels.Bundle) (*export.Document, error) {
	return m.exporter.DocumentPDF(ctx, bundle)
}

// PrintGrouped opens the two-per-row print view for the given photos.
func (m *Manager) PrintGrouped(ctx context.Context, ids []string) error {
	photos := m.photosFor(ids)
	if len(photos) == 0 {
		return fmt.Errorf("nothing to print")
	}
	html, err := printview.Grouped(photos)
	if err != nil {
		return err
	}
	return m.surface.Open(ctx, html)
}

// PrintSingle opens the single-photo print view.
func (m *Manager) PrintSingle(ctx context.Context, id string) error {
	p, err := m.Get(id)
	if err != nil {
		return err
	}
	html, err := printview.Single(p)
	if err != nil {
		return err
	}
	return m.surface.Open(ctx, html)
}

// PrintBundle opens the document-verification print view for a bundle.
func (m *Manager) PrintBundle(ctx context.Context, bundle *clientmodels.Bundle) error {
	html, err := printview.Document(bundle)
	if err != nil {
		return err
	}
	return m.surface.Open(ctx, html)
}
