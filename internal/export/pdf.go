// Package export renders stored photos and completed capture bundles into
// downloadable PDF documents.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	clientmodels "github.com/docsnap/docsnap/internal/client/models"
	"github.com/docsnap/docsnap/internal/export/layout"
	"github.com/docsnap/docsnap/internal/logging"
)

// A4 portrait geometry, millimetres.
const (
	pageWidth  = 210.0
	pageHeight = 297.0
	margin     = 15.0
	captionGap = 18.0
)

// Document is a rendered PDF ready to be written to disk or sent to a
// client.
type Document struct {
	Name string
	Data []byte
}

// Builder renders PDFs from photo records. Image bytes come through the
// Loader so the builder itself never talks to storage directly.
type Builder struct {
	loader Loader
	logger logging.Logger

	now func() time.Time
}

func NewBuilder(loader Loader, logger logging.Logger) *Builder {
	return &Builder{
		loader: loader,
		logger: logger,
		now:    time.Now,
	}
}

// PhotosPDF renders one page per photo: the image scaled to fit the page
// with a filename and capture-date caption underneath. Photos whose bytes
// cannot be loaded are skipped; the rest of the document is still produced.
// Fails only when not a single photo could be rendered.
func (b *Builder) PhotosPDF(ctx context.Context, photos []clientmodels.Photo) (*Document, error) {
	if len(photos) == 0 {
		return nil, errors.New("no photos to export")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 10)

	rendered := 0
	for _, photo := range photos {
		data, err := b.loader.Load(ctx, photo.URL)
		if err != nil {
			b.logger.Warn(ctx, "skipping photo in export", "id", photo.ID, "err", err)
			continue
		}

		opts := gofpdf.ImageOptions{ImageType: "JPG"}
		info := pdf.RegisterImageOptionsReader(photo.ID, opts, bytes.NewReader(data))
		if pdf.Err() {
			b.logger.Warn(ctx, "skipping undecodable photo", "id", photo.ID, "err", pdf.Error())
			pdf.ClearError()
			continue
		}

		pdf.AddPage()

		maxW := pageWidth - 2*margin
		maxH := pageHeight - 2*margin - captionGap
		r := layout.FitRect(info.Width(), info.Height(), maxW, maxH)
		pdf.ImageOptions(photo.ID, margin+r.X, margin+r.Y, r.W, r.H, false, opts, 0, "")

		captionY := pageHeight - margin - 8
		pdf.Text(margin, captionY, photo.Filename)
		pdf.Text(margin, captionY+5, photo.CreatedAt.Format("2006-01-02 15:04:05"))

		rendered++
	}

	if rendered == 0 {
		return nil, errors.New("no photos could be rendered")
	}

	now := b.now()
	name := fmt.Sprintf("photos_%s_%d.pdf", now.Format("2006-01-02"), now.UnixMilli())
	return b.output(pdf, name)
}

// DocumentPDF renders a single-page verification sheet for a completed
// capture bundle: front and back photos side by side, the signature raster
// in a framed box, the capture timestamp, and the document id in the footer.
func (b *Builder) DocumentPDF(ctx context.Context, bundle *clientmodels.Bundle) (*Document, error) {
	if bundle == nil {
		return nil, errors.New("nil bundle")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Document Verification", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Front and back occupy at most a quarter of the page each.
	const (
		gutter = 10.0
		photoY = 35.0
	)
	boxW := (pageWidth - 2*margin - gutter) / 2
	boxH := pageHeight / 4

	pdf.SetFont("Helvetica", "", 10)
	if err := b.placePhoto(ctx, pdf, bundle.Front, "Front", margin, photoY, boxW, boxH); err != nil {
		return nil, err
	}
	if err := b.placePhoto(ctx, pdf, bundle.Back, "Back", margin+boxW+gutter, photoY, boxW, boxH); err != nil {
		return nil, err
	}

	// Signature box, frame drawn even when the pad stayed empty.
	sigY := photoY + boxH + 20
	sigW := 100.0
	sigH := 40.0
	sigX := (pageWidth - sigW) / 2

	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(sigX, sigY-3, "Signature:")
	pdf.Rect(sigX, sigY, sigW, sigH, "D")

	if bundle.Signature != nil {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, bundle.Signature, imaging.PNG); err != nil {
			return nil, fmt.Errorf("signature encode: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		info := pdf.RegisterImageOptionsReader("signature", opts, &buf)
		if pdf.Err() {
			return nil, fmt.Errorf("signature register: %v", pdf.Error())
		}
		r := layout.FitRect(info.Width(), info.Height(), sigW-4, sigH-4)
		pdf.ImageOptions("signature", sigX+2+r.X, sigY+2+r.Y, r.W, r.H, false, opts, 0, "")
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(margin, sigY+sigH+15, "Captured: "+bundle.Timestamp.Format("2006-01-02 15:04:05"))

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.Text(margin, pageHeight-margin, "Document ID: "+bundle.DocumentID)

	now := b.now()
	name := fmt.Sprintf("document_verification_%s_%d.pdf", now.Format("2006-01-02"), now.UnixMilli())
	return b.output(pdf, name)
}

// placePhoto loads one bundle photo and draws it labelled inside the given
// box. Bundle photos are required; a load failure fails the whole document.
func (b *Builder) placePhoto(ctx context.Context, pdf *gofpdf.Fpdf, photo clientmodels.Photo, label string, x, y, maxW, maxH float64) error {
	data, err := b.loader.Load(ctx, photo.URL)
	if err != nil {
		return err
	}

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	info := pdf.RegisterImageOptionsReader(photo.ID, opts, bytes.NewReader(data))
	if pdf.Err() {
		return fmt.Errorf("register %s photo: %v", label, pdf.Error())
	}

	pdf.Text(x, y-3, label)
	r := layout.FitRect(info.Width(), info.Height(), maxW, maxH)
	pdf.ImageOptions(photo.ID, x+r.X, y+r.Y, r.W, r.H, false, opts, 0, "")
	return nil
}

func (b *Builder) output(pdf *gofpdf.Fpdf, name string) (*Document, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return &Document{Name: name, Data: buf.Bytes()}, nil
}
