// Package printview builds self-printing HTML documents and hands them to a
// print surface (normally the OS default browser).
package printview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/disintegration/imaging"

	clientmodels "github.com/docsnap/docsnap/internal/client/models"
)

// Settle delays before the print dialog fires, giving the browser time to
// fetch and lay out the images. The grid view loads many images and gets a
// longer delay.
const (
	groupedSettle = 1000 * time.Millisecond
	singleSettle  = 500 * time.Millisecond
)

var groupedTmpl = template.Must(template.New("grouped").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Print Photos</title>
<style>
  body { font-family: Arial, sans-serif; margin: 20px; }
  .grid { display: flex; flex-wrap: wrap; gap: 16px; }
  .item { width: calc(50% - 8px); page-break-inside: avoid; }
  .item img { width: 100%; height: auto; }
  .caption { font-size: 12px; color: #444; margin-top: 4px; }
  @media print { .item { width: 48%; } }
</style>
</head>
<body>
<div class="grid">
{{- range .Photos }}
  <div class="item">
    <img src="{{ .URL }}" alt="{{ .Filename }}">
    <div class="caption">{{ .Filename }}<br>{{ .CreatedAt.Format "2006-01-02 15:04:05" }}</div>
  </div>
{{- end }}
</div>
<script>setTimeout(function () { window.print(); }, {{ .SettleMs }});</script>
</body>
</html>
`))

var singleTmpl = template.Must(template.New("single").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Print Photo</title>
<style>
  body { font-family: Arial, sans-serif; margin: 20px; text-align: center; }
  img { max-width: 100%; max-height: 85vh; }
  .caption { font-size: 12px; color: #444; margin-top: 8px; }
</style>
</head>
<body>
<img src="{{ .Photo.URL }}" alt="{{ .Photo.Filename }}">
<div class="caption">{{ .Photo.Filename }} &mdash; {{ .Photo.CreatedAt.Format "2006-01-02 15:04:05" }}</div>
<script>setTimeout(function () { window.print(); }, {{ .SettleMs }});</script>
</body>
</html>
`))

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Document Verification</title>
<style>
  body { font-family: Arial, sans-serif; margin: 30px; }
  h1 { text-align: center; font-size: 22px; }
  .photos { display: flex; gap: 20px; justify-content: space-between; }
  .photos div { width: 48%; }
  .photos img { width: 100%; height: auto; }
  .label { font-size: 13px; color: #333; margin-bottom: 4px; }
  .signature { margin: 30px auto 0; width: 400px; }
  .signature .box { border: 1px solid #333; height: 150px; display: flex; align-items: center; justify-content: center; }
  .signature img { max-width: 100%; max-height: 100%; }
  .meta { margin-top: 24px; font-size: 13px; }
  .footer { margin-top: 40px; font-size: 11px; color: #888; }
</style>
</head>
<body>
<h1>Document Verification</h1>
<div class="photos">
  <div><div class="label">Front</div><img src="{{ .FrontURL }}" alt="front"></div>
  <div><div class="label">Back</div><img src="{{ .BackURL }}" alt="back"></div>
</div>
<div class="signature">
  <div class="label">Signature</div>
  <div class="box">{{ if .SignatureURI }}<img src="{{ .SignatureURI }}" alt="signature">{{ end }}</div>
</div>
<div class="meta">Captured: {{ .Timestamp.Format "2006-01-02 15:04:05" }}</div>
<div class="footer">Document ID: {{ .DocumentID }}</div>
<script>setTimeout(function () { window.print(); }, {{ .SettleMs }});</script>
</body>
</html>
`))

// Grouped renders the two-per-row photo grid.
func Grouped(photos []clientmodels.Photo) (string, error) {
	var buf bytes.Buffer
	err := groupedTmpl.Execute(&buf, struct {
		Photos   []clientmodels.Photo
		SettleMs int64
	}{photos, groupedSettle.Milliseconds()})
	if err != nil {
		return "", fmt.Errorf("render grouped view: %w", err)
	}
	return buf.String(), nil
}

// Single renders a one-photo page.
func Single(p clientmodels.Photo) (string, error) {
	var buf bytes.Buffer
	err := singleTmpl.Execute(&buf, struct {
		Photo    clientmodels.Photo
		SettleMs int64
	}{p, singleSettle.Milliseconds()})
	if err != nil {
		return "", fmt.Errorf("render single view: %w", err)
	}
	return buf.String(), nil
}

// Document renders the verification sheet for a completed bundle. The
// signature raster is inlined as a data URI so the page needs no extra
// round trip for it.
func Document(bundle *clientmodels.Bundle) (string, error) {
	if bundle == nil {
		return "", fmt.Errorf("nil bundle")
	}

	sigURI := ""
	if bundle.Signature != nil {
		var png bytes.Buffer
		if err := imaging.Encode(&png, bundle.Signature, imaging.PNG); err != nil {
			return "", fmt.Errorf("encode signature: %w", err)
		}
		sigURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png.Bytes())
	}

	var buf bytes.Buffer
	err := documentTmpl.Execute(&buf, struct {
		FrontURL     string
		BackURL      string
		SignatureURI template.URL
		Timestamp    time.Time
		DocumentID   string
		SettleMs     int64
	}{
		FrontURL:     bundle.Front.URL,
		BackURL:      bundle.Back.URL,
		SignatureURI: template.URL(sigURI),
		Timestamp:    bundle.Timestamp,
		DocumentID:   bundle.DocumentID,
		SettleMs:     singleSettle.Milliseconds(),
	})
	if err != nil {
		return "", fmt.Errorf("render document view: %w", err)
	}
	return buf.String(), nil
}
