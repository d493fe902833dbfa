// Package capture implements the document-capture session: a linear
// front → back → signature wizard that drives the camera, rasterizes
// frames, and commits each captured image to the persistence layer.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disintegration/imaging"

	"github.com/docsnap/docsnap/internal/capture/device"
	"github.com/docsnap/docsnap/internal/capture/signature"
	clientmodels "github.com/docsnap/docsnap/internal/client/models"
	"github.com/docsnap/docsnap/internal/common"
	"github.com/docsnap/docsnap/internal/logging"
)

// Stage is one step of the linear capture sequence.
type Stage string

const (
	StageFront     Stage = "front"
	StageBack      Stage = "back"
	StageSignature Stage = "signature"
	StageComplete  Stage = "complete"
)

// jpegQuality matches the lossy encoding used for captured frames.
const jpegQuality = 90

// Signature pad geometry.
const (
	padWidth  = 400
	padHeight = 150
)

// Uploader commits an encoded frame to the persistence layer: blob first,
// metadata second. The api.Client satisfies this.
type Uploader interface {
	UploadPhoto(ctx context.Context, side string, jpeg []byte) (*clientmodels.Photo, error)
}

// Options tune a session for its environment.
type Options struct {
	// Mobile appends device-specific guidance to camera errors.
	Mobile bool
	// SecureContext reports whether the upload origin is trusted (TLS or
	// loopback). Camera use is refused otherwise.
	SecureContext bool
	// Constraints overrides the default stream constraints when non-zero.
	Constraints device.Constraints
}

// Session owns one front/back/signature capture flow. It is not safe for
// concurrent use; all calls are expected from a single UI goroutine.
type Session struct {
	device   device.Device
	uploader Uploader
	logger   logging.Logger
	opts     Options

	stage  Stage
	stream device.Stream
	front  *clientmodels.Photo
	back   *clientmodels.Photo
	pad    *signature.Pad
	bundle *clientmodels.Bundle

	now func() time.Time
}

// NewSession creates a session at the front stage with an empty signature pad.
func NewSession(dev device.Device, uploader Uploader, logger logging.Logger, opts Options) *Session {
	return &Session{
		device:   dev,
		uploader: uploader,
		logger:   logger,
		opts:     opts,
		stage:    StageFront,
		pad:      signature.NewPad(padWidth, padHeight),
		now:      time.Now,
	}
}

// Stage returns the current wizard stage.
func (s *Session) Stage() Stage {
	return s.stage
}

// Streaming reports whether a camera stream is active.
func (s *Session) Streaming() bool {
	return s.stream != nil
}

// Front returns the uploaded front-photo record, if captured.
func (s *Session) Front() *clientmodels.Photo { return s.front }

// Back returns the uploaded back-photo record, if captured.
func (s *Session) Back() *clientmodels.Photo { return s.back }

// Pad exposes the signature pad for drawing input.
func (s *Session) Pad() *signature.Pad { return s.pad }

// defaultConstraints mirrors the capture preferences: the outward camera and
// higher resolution on mobile hardware, the user-facing camera elsewhere.
func (s *Session) defaultConstraints() device.Constraints {
	if s.opts.Constraints != (device.Constraints{}) {
		return s.opts.Constraints
	}
	c := device.Constraints{
		Facing:      device.FacingUser,
		IdealWidth:  1920,
		IdealHeight: 1080,
		MinWidth:    640,
		MinHeight:   480,
	}
	if s.opts.Mobile {
		c.Facing = device.FacingEnvironment
		c.IdealWidth = 1280
		c.IdealHeight = 720
	}
	return c
}

// Start acquires the camera stream. On a constraints failure it retries once
// with the minimal constraint set before giving up. All camera errors carry
// mobile guidance when the session runs on a mobile device.
func (s *Session) Start(ctx context.Context) error {
	if s.stream != nil {
		return nil
	}
	if s.device == nil {
		return s.cameraErr(common.ErrUnsupported)
	}
	if !s.opts.SecureContext {
		return s.cameraErr(common.ErrInsecureContext)
	}

	stream, err := s.device.Acquire(ctx, s.defaultConstraints())
	if errors.Is(err, common.ErrConstraints) {
		s.logger.Warn(ctx, "camera constraints unsatisfiable, retrying relaxed", "err", err)
		stream, err = s.device.Acquire(ctx, device.Relaxed())
	}
	if err != nil {
		return s.cameraErr(err)
	}

	s.stream = stream
	w, h := stream.Size()
	s.logger.Info(ctx, "camera streaming", "width", w, "height", h)
	return nil
}

// StopCamera releases the active stream's resources. Idempotent.
func (s *Session) StopCamera() {
	if s.stream == nil {
		return
	}
	s.stream.Stop()
	s.stream = nil
}

// CaptureFrame rasterizes the current video frame, encodes it as JPEG, and
// commits it through the uploader. Valid only in the front or back stage
// while streaming. The stage advances only after the upload and metadata
// write both succeed.
func (s *Session) CaptureFrame(ctx context.Context) (*clientmodels.Photo, error) {
	if s.stage != StageFront && s.stage != StageBack {
		return nil, fmt.Errorf("capture not valid in stage %q", s.stage)
	}
	if s.stream == nil {
		return nil, common.ErrNotStreaming
	}

	frame, err := s.stream.Frame()
	if err != nil {
		return nil, s.cameraErr(err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("frame encode: %w", err)
	}

	photo, err := s.uploader.UploadPhoto(ctx, string(s.stage), buf.Bytes())
	if err != nil {
		// Stage does not advance; the user retries the same side.
		s.logger.Error(ctx, "capture upload failed", "stage", string(s.stage), "err", err)
		return nil, err
	}

	switch s.stage {
	case StageFront:
		s.front = photo
		s.stage = StageBack
	case StageBack:
		s.back = photo
		s.stage = StageSignature
	}

	s.logger.Info(ctx, "side captured", "stage", string(s.stage), "id", photo.ID)
	return photo, nil
}

// Finalize produces the document bundle once both photo stages are complete
// and a signature has been drawn. Repeated calls after completion return the
// same bundle without touching the persistence layer again.
func (s *Session) Finalize() (*clientmodels.Bundle, error) {
	if s.bundle != nil {
		return s.bundle, nil
	}
	if s.front == nil || s.back == nil || s.pad.Empty() {
		return nil, common.ErrIncompleteCapture
	}

	now := s.now()
	s.bundle = &clientmodels.Bundle{
		Front:      *s.front,
		Back:       *s.back,
		Signature:  s.pad.Image(),
		Timestamp:  now,
		DocumentID: fmt.Sprintf("doc_%d", now.UnixMilli()),
	}
	s.stage = StageComplete

	return s.bundle, nil
}

// Reset returns the session to the front stage and discards all in-memory
// image references. Photos already committed to the backend stay there.
func (s *Session) Reset() {
	s.stage = StageFront
	s.front = nil
	s.back = nil
	s.bundle = nil
	s.pad.Clear()
}

// cameraErr appends mobile camera guidance to camera-related failures when
// running on a mobile device.
func (s *Session) cameraErr(err error) error {
	if !s.opts.Mobile {
		return err
	}
	return fmt.Errorf("%w\n\nMobile tips:\n"+
		"- make sure the capture origin uses HTTPS\n"+
		"- check that camera permissions are granted\n"+
		"- close other applications using the camera\n"+
		"- try restarting the kiosk", err)
}
