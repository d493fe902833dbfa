// Package models defines server-side data models persisted in the database.
package models

import "time"

// Photo describes metadata for a captured document image. The image bytes
// themselves live in object storage; each row references exactly one blob.
type Photo struct {
	// ID is the server-assigned record identifier.
	ID string `json:"id"`
	// Filename is the generated originating filename,
	// e.g. "document_front_1693412345678.jpg".
	Filename string `json:"filename"`
	// URL is the public address of the stored bytes.
	URL string `json:"url"`
	// FilePath is the object-storage key of the blob.
	FilePath string `json:"file_path"`
	// Size is the byte count of the encoded image.
	Size int64 `json:"size"`
	// CreatedAt is the capture/upload timestamp.
	CreatedAt time.Time `json:"created_at"`
}
