package export

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientmodels "github.com/docsnap/docsnap/internal/client/models"
	"github.com/docsnap/docsnap/internal/common"
	"github.com/docsnap/docsnap/internal/logging"
)

type fakeLoader struct {
	images map[string][]byte
	calls  []string
}

func (l *fakeLoader) Load(_ context.Context, url string) ([]byte, error) {
	l.calls = append(l.calls, url)
	data, ok := l.images[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrImageLoad, url)
	}
	return data, nil
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 180, G: 180, B: 180, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func newTestBuilder(loader Loader) *Builder {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	b := NewBuilder(loader, logger)
	b.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return b
}

func photo(id, url string) clientmodels.Photo {
	return clientmodels.Photo{
		ID:        id,
		Filename:  "document_front_1.jpg",
		URL:       url,
		CreatedAt: time.Date(2024, 4, 30, 9, 30, 0, 0, time.UTC),
	}
}

func TestPhotosPDF_RendersAllPhotos(t *testing.T) {
	loader := &fakeLoader{images: map[string][]byte{
		"u1": jpegBytes(t, 640, 480),
		"u2": jpegBytes(t, 480, 640),
	}}
	b := newTestBuilder(loader)

	doc, err := b.PhotosPDF(context.Background(), []clientmodels.Photo{
		photo("p1", "u1"),
		photo("p2", "u2"),
	})
	require.NoError(t, err)

	assert.Equal(t, "photos_2024-05-01_1714564800000.pdf", doc.Name)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
	assert.Equal(t, []string{"u1", "u2"}, loader.calls)
}

func TestPhotosPDF_SkipsUnloadablePhotos(t *testing.T) {
	loader := &fakeLoader{images: map[string][]byte{
		"ok": jpegBytes(t, 320, 240),
	}}
	b := newTestBuilder(loader)

	doc, err := b.PhotosPDF(context.Background(), []clientmodels.Photo{
		photo("bad", "missing"),
		photo("good", "ok"),
	})
	require.NoError(t, err, "one broken photo must not fail the export")
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestPhotosPDF_FailsWhenNothingRenders(t *testing.T) {
	b := newTestBuilder(&fakeLoader{})

	_, err := b.PhotosPDF(context.Background(), []clientmodels.Photo{photo("p1", "gone")})
	require.Error(t, err)
}

func TestPhotosPDF_EmptyInput(t *testing.T) {
	b := newTestBuilder(&fakeLoader{})

	_, err := b.PhotosPDF(context.Background(), nil)
	require.Error(t, err)
}

func TestDocumentPDF_RendersBundle(t *testing.T) {
	loader := &fakeLoader{images: map[string][]byte{
		"front-url": jpegBytes(t, 640, 480),
		"back-url":  jpegBytes(t, 640, 480),
	}}
	b := newTestBuilder(loader)

	bundle := &clientmodels.Bundle{
		Front:      photo("f", "front-url"),
		Back:       photo("b", "back-url"),
		Signature:  imaging.New(400, 150, color.NRGBA{}),
		Timestamp:  time.Date(2024, 5, 1, 11, 55, 0, 0, time.UTC),
		DocumentID: "doc_1714564500000",
	}

	doc, err := b.DocumentPDF(context.Background(), bundle)
	require.NoError(t, err)

	assert.Equal(t, "document_verification_2024-05-01_1714564800000.pdf", doc.Name)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestDocumentPDF_MissingSidePhotoFails(t *testing.T) {
	loader := &fakeLoader{images: map[string][]byte{
		"front-url": jpegBytes(t, 640, 480),
	}}
	b := newTestBuilder(loader)

	bundle := &clientmodels.Bundle{
		Front:      photo("f", "front-url"),
		Back:       photo("b", "back-url"),
		Timestamp:  time.Now(),
		DocumentID: "doc_1",
	}

	_, err := b.DocumentPDF(context.Background(), bundle)
	require.ErrorIs(t, err, common.ErrImageLoad)
}

func TestDocumentPDF_NilBundle(t *testing.T) {
	b := newTestBuilder(&fakeLoader{})

	_, err := b.DocumentPDF(context.Background(), nil)
	require.Error(t, err)
}
