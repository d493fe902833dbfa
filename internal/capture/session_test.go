package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsnap/docsnap/internal/capture/device"
	"github.com/docsnap/docsnap/internal/capture/signature"
	clientmodels "github.com/docsnap/docsnap/internal/client/models"
	"github.com/docsnap/docsnap/internal/common"
	"github.com/docsnap/docsnap/internal/logging"
)

type fakeStream struct {
	frame    image.Image
	frameErr error
	stops    int
}

func (s *fakeStream) Frame() (image.Image, error) {
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	return s.frame, nil
}

func (s *fakeStream) Size() (int, int) {
	b := s.frame.Bounds()
	return b.Dx(), b.Dy()
}

func (s *fakeStream) Stop() { s.stops++ }

type fakeDevice struct {
	stream   *fakeStream
	errs     []error // consumed per Acquire call; nil means success
	acquired []device.Constraints
}

func (d *fakeDevice) Acquire(_ context.Context, c device.Constraints) (device.Stream, error) {
	d.acquired = append(d.acquired, c)
	if len(d.errs) > 0 {
		err := d.errs[0]
		d.errs = d.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return d.stream, nil
}

type fakeUploader struct {
	uploads []string
	err     error
	nextID  int
}

func (u *fakeUploader) UploadPhoto(_ context.Context, side string, jpeg []byte) (*clientmodels.Photo, error) {
	if u.err != nil {
		return nil, u.err
	}
	u.uploads = append(u.uploads, side)
	u.nextID++
	return &clientmodels.Photo{
		ID:       side + "-id",
		Filename: "document_" + side + "_1.jpg",
		URL:      "https://cdn.test/" + side + ".jpg",
		Size:     int64(len(jpeg)),
	}, nil
}

func testFrame() image.Image {
	return imaging.New(64, 48, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
}

func newTestSession(dev device.Device, up Uploader, opts Options) *Session {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	s := NewSession(dev, up, logger, opts)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSession_HappyPath_AdvancesThroughAllStages(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
	up := &fakeUploader{}
	s := newTestSession(dev, up, Options{SecureContext: true})

	require.Equal(t, StageFront, s.Stage())
	require.NoError(t, s.Start(context.Background()))

	_, err := s.CaptureFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageBack, s.Stage())

	_, err = s.CaptureFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageSignature, s.Stage())

	s.Pad().AddStroke([]signature.Point{{X: 10, Y: 10}, {X: 100, Y: 60}})

	bundle, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, StageComplete, s.Stage())
	assert.Equal(t, "front-id", bundle.Front.ID)
	assert.Equal(t, "back-id", bundle.Back.ID)
	assert.NotNil(t, bundle.Signature)
	assert.Equal(t, "doc_1714564800000", bundle.DocumentID)

	assert.Equal(t, []string{"front", "back"}, up.uploads)
}

func TestStart_InsecureContextRefused(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: false})

	err := s.Start(context.Background())
	require.ErrorIs(t, err, common.ErrInsecureContext)
	assert.False(t, s.Streaming())
}

func TestStart_NoDeviceIsUnsupported(t *testing.T) {
	s := newTestSession(nil, &fakeUploader{}, Options{SecureContext: true})

	err := s.Start(context.Background())
	require.ErrorIs(t, err, common.ErrUnsupported)
}

func TestStart_RetriesRelaxedOnConstraintFailure(t *testing.T) {
	dev := &fakeDevice{
		stream: &fakeStream{frame: testFrame()},
		errs:   []error{common.ErrConstraints, nil},
	}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true})

	require.NoError(t, s.Start(context.Background()))

	require.Len(t, dev.acquired, 2)
	assert.NotEqual(t, device.Relaxed(), dev.acquired[0])
	assert.Equal(t, device.Relaxed(), dev.acquired[1], "second attempt must use minimal constraints")
}

func TestStart_PermissionDeniedIsTerminal(t *testing.T) {
	dev := &fakeDevice{errs: []error{common.ErrPermissionDenied}}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true})

	err := s.Start(context.Background())
	require.ErrorIs(t, err, common.ErrPermissionDenied)
	require.Len(t, dev.acquired, 1, "only constraint failures are retried")
}

func TestStart_MobileGuidanceAppended(t *testing.T) {
	dev := &fakeDevice{errs: []error{common.ErrPermissionDenied}}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true, Mobile: true})

	err := s.Start(context.Background())
	require.ErrorIs(t, err, common.ErrPermissionDenied)
	assert.Contains(t, err.Error(), "Mobile tips")
}

func TestMobileConstraints_PreferEnvironmentCamera(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true, Mobile: true})

	require.NoError(t, s.Start(context.Background()))

	require.Len(t, dev.acquired, 1)
	assert.Equal(t, device.FacingEnvironment, dev.acquired[0].Facing)
	assert.Equal(t, 1280, dev.acquired[0].IdealWidth)
}

func TestCaptureFrame_RequiresStreaming(t *testing.T) {
	s := newTestSession(&fakeDevice{}, &fakeUploader{}, Options{SecureContext: true})

	_, err := s.CaptureFrame(context.Background())
	require.ErrorIs(t, err, common.ErrNotStreaming)
}

func TestCaptureFrame_InvalidInSignatureStage(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true})

	require.NoError(t, s.Start(context.Background()))
	_, err := s.CaptureFrame(context.Background())
	require.NoError(t, err)
	_, err = s.CaptureFrame(context.Background())
	require.NoError(t, err)
	require.Equal(t, StageSignature, s.Stage())

	_, err = s.CaptureFrame(context.Background())
	require.Error(t, err)
	assert.Equal(t, StageSignature, s.Stage(), "stage must not move")
}

func TestCaptureFrame_UploadFailureDoesNotAdvance(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
	up := &fakeUploader{err: common.ErrUpload}
	s := newTestSession(dev, up, Options{SecureContext: true})

	require.NoError(t, s.Start(context.Background()))

	_, err := s.CaptureFrame(context.Background())
	require.ErrorIs(t, err, common.ErrUpload)
	assert.Equal(t, StageFront, s.Stage())
	assert.Nil(t, s.Front())

	// Clearing the failure lets the same side be captured again.
	up.err = nil
	_, err = s.CaptureFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageBack, s.Stage())
}

func TestFinalize_IncompleteWithoutBothPhotos(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true})

	_, err := s.Finalize()
	require.ErrorIs(t, err, common.ErrIncompleteCapture)

	require.NoError(t, s.Start(context.Background()))
	_, err = s.CaptureFrame(context.Background())
	require.NoError(t, err)

	_, err = s.Finalize()
	require.ErrorIs(t, err, common.ErrIncompleteCapture, "front alone is not enough")
}

func TestFinalize_RequiresNonEmptySignature(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true})

	require.NoError(t, s.Start(context.Background()))
	_, err := s.CaptureFrame(context.Background())
	require.NoError(t, err)
	_, err = s.CaptureFrame(context.Background())
	require.NoError(t, err)

	_, err = s.Finalize()
	require.ErrorIs(t, err, common.ErrIncompleteCapture, "blank pad must block completion")

	s.Pad().AddStroke([]signature.Point{{X: 1, Y: 1}, {X: 30, Y: 30}})
	_, err = s.Finalize()
	require.NoError(t, err)
}

func TestFinalize_IsIdempotentAfterCompletion(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
	up := &fakeUploader{}
	s := newTestSession(dev, up, Options{SecureContext: true})

	require.NoError(t, s.Start(context.Background()))
	_, _ = s.CaptureFrame(context.Background())
	_, _ = s.CaptureFrame(context.Background())
	s.Pad().AddStroke([]signature.Point{{X: 5, Y: 5}, {X: 90, Y: 40}})

	b1, err := s.Finalize()
	require.NoError(t, err)
	b2, err := s.Finalize()
	require.NoError(t, err)

	assert.Same(t, b1, b2)
	assert.Len(t, up.uploads, 2, "finalize must not trigger new uploads")
}

func TestReset_ReturnsToFrontAndClearsState(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true})

	require.NoError(t, s.Start(context.Background()))
	_, _ = s.CaptureFrame(context.Background())
	_, _ = s.CaptureFrame(context.Background())
	s.Pad().AddStroke([]signature.Point{{X: 1, Y: 1}, {X: 50, Y: 50}})
	_, err := s.Finalize()
	require.NoError(t, err)

	s.Reset()

	assert.Equal(t, StageFront, s.Stage())
	assert.Nil(t, s.Front())
	assert.Nil(t, s.Back())
	assert.True(t, s.Pad().Empty())

	_, err = s.Finalize()
	assert.ErrorIs(t, err, common.ErrIncompleteCapture, "reset must drop the completed bundle")
}

func TestReset_FromEveryStage(t *testing.T) {
	stages := []int{0, 1, 2} // captures to perform before reset
	for _, captures := range stages {
		dev := &fakeDevice{stream: &fakeStream{frame: testFrame()}}
		s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true})
		require.NoError(t, s.Start(context.Background()))

		for i := 0; i < captures; i++ {
			_, err := s.CaptureFrame(context.Background())
			require.NoError(t, err)
		}

		s.Reset()
		assert.Equal(t, StageFront, s.Stage())
		assert.Nil(t, s.Front())
		assert.Nil(t, s.Back())
	}
}

func TestStopCamera_IsIdempotent(t *testing.T) {
	stream := &fakeStream{frame: testFrame()}
	dev := &fakeDevice{stream: stream}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true})

	require.NoError(t, s.Start(context.Background()))
	s.StopCamera()
	s.StopCamera()

	assert.Equal(t, 1, stream.stops)
	assert.False(t, s.Streaming())
}

func TestCaptureFrame_FrameErrorSurfaces(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{frame: testFrame(), frameErr: errors.New("sensor glitch")}}
	s := newTestSession(dev, &fakeUploader{}, Options{SecureContext: true})

	require.NoError(t, s.Start(context.Background()))

	_, err := s.CaptureFrame(context.Background())
	require.Error(t, err)
	assert.Equal(t, StageFront, s.Stage())
}
