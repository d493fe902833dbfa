// Package device abstracts the platform camera capability behind a narrow
// interface so the capture session can be tested without real hardware.
package device

import (
	"context"
	"image"
)

// Facing expresses which camera to prefer on devices that have several.
type Facing string

const (
	// FacingUser prefers the self-facing camera.
	FacingUser Facing = "user"
	// FacingEnvironment prefers the outward-facing camera, the better
	// choice for document capture.
	FacingEnvironment Facing = "environment"
)

// Constraints describes the requested stream geometry. Zero values mean
// "no preference".
type Constraints struct {
	Facing      Facing
	IdealWidth  int
	IdealHeight int
	MinWidth    int
	MinHeight   int
}

// Relaxed returns the minimal constraint set used as a fallback when the
// preferred constraints cannot be satisfied.
func Relaxed() Constraints {
	return Constraints{}
}

// Stream is a live video feed.
type Stream interface {
	// Frame grabs the current frame at the stream's native resolution.
	Frame() (image.Image, error)

	// Size reports the native frame dimensions.
	Size() (width, height int)

	// Stop releases the underlying capture resources. Safe to call more
	// than once.
	Stop()
}

// Device acquires video streams. Failures are reported through the shared
// sentinel errors: common.ErrPermissionDenied, common.ErrDeviceNotFound,
// common.ErrDeviceBusy, common.ErrConstraints, common.ErrUnsupported.
type Device interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}
