// Package common defines shared constants and sentinel errors used across
// the capture and dashboard sides of DocSnap. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Camera acquisition errors, mapped from the device capability's
	// refusal reasons.
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrDeviceNotFound   = errors.New("no camera found on this device")
	ErrDeviceBusy       = errors.New("camera is already in use by another application")
	ErrConstraints      = errors.New("camera constraints not supported")
	ErrUnsupported      = errors.New("camera access is not supported on this device")
	ErrInsecureContext  = errors.New("camera access requires a secure origin")

	// Persistence errors.
	ErrUpload        = errors.New("photo upload failed")
	ErrMetadataWrite = errors.New("photo metadata write failed")
	ErrDelete        = errors.New("photo delete failed")

	// Capture session errors.
	ErrIncompleteCapture = errors.New("front and back photos must be captured first")
	ErrNotStreaming      = errors.New("camera is not streaming")

	// Export / print errors.
	ErrImageLoad    = errors.New("image could not be loaded")
	ErrPopupBlocked = errors.New("print window could not be opened")
)
