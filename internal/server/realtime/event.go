// Package realtime fans photo-table change notifications out to WebSocket
// subscribers. Delivery is best-effort: consumers must treat events as
// idempotent set operations keyed by photo id.
package realtime

import "github.com/docsnap/docsnap/internal/server/models"

// Event types carried on the change stream.
const (
	EventInsert = "insert"
	EventDelete = "delete"
)

// ChangeEvent describes a single photo-table change. For deletes only the
// photo ID is guaranteed to be populated.
type ChangeEvent struct {
	Type  string       `json:"type"`
	Photo models.Photo `json:"photo"`
}
