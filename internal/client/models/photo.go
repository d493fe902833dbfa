// Package models defines client-side views of server records.
package models

import (
	"image"
	"time"
)

// Photo mirrors the server's photo metadata record as delivered over the
// HTTP API and the change feed.
type Photo struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	FilePath  string    `json:"file_path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeType enumerates collection change notifications.
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeDelete ChangeType = "delete"
)

// ChangeEvent is one notification from the photo change feed. For deletes
// only the photo ID is reliable.
type ChangeEvent struct {
	Type  ChangeType `json:"type"`
	Photo Photo      `json:"photo"`
}

// Bundle is the combined output of a completed capture session: both photo
// references plus the in-memory signature raster metadata. It is never
// persisted as a unit.
type Bundle struct {
	Front      Photo
	Back       Photo
	Signature  image.Image
	Timestamp  time.Time
	DocumentID string
}
