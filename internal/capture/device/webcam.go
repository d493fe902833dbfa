package device

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/docsnap/docsnap/internal/common"
)

// Webcam is the OpenCV-backed Device implementation for local cameras.
// The facing preference is ignored: a kiosk has a single fixed camera.
type Webcam struct {
	deviceID int
}

// NewWebcam selects the capture device by OS index (0 is the default camera).
func NewWebcam(deviceID int) *Webcam {
	return &Webcam{deviceID: deviceID}
}

// Acquire opens the capture device and applies the requested geometry.
// If the device cannot reach the minimum dimensions the stream is closed
// and common.ErrConstraints is returned so the caller can retry relaxed.
func (w *Webcam) Acquire(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := gocv.OpenVideoCapture(w.deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDeviceNotFound, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, common.ErrDeviceBusy
	}

	if c.IdealWidth > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(c.IdealWidth))
	}
	if c.IdealHeight > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(c.IdealHeight))
	}

	width := int(vc.Get(gocv.VideoCaptureFrameWidth))
	height := int(vc.Get(gocv.VideoCaptureFrameHeight))

	if (c.MinWidth > 0 && width < c.MinWidth) || (c.MinHeight > 0 && height < c.MinHeight) {
		_ = vc.Close()
		return nil, fmt.Errorf("%w: device delivers %dx%d", common.ErrConstraints, width, height)
	}

	return &webcamStream{vc: vc, width: width, height: height}, nil
}

type webcamStream struct {
	vc     *gocv.VideoCapture
	width  int
	height int

	mu      sync.Mutex
	stopped bool
}

func (s *webcamStream) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, common.ErrNotStreaming
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := s.vc.Read(&mat); !ok || mat.Empty() {
		return nil, fmt.Errorf("%w: could not read frame", common.ErrDeviceBusy)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("frame conversion: %w", err)
	}
	return img, nil
}

func (s *webcamStream) Size() (int, int) {
	return s.width, s.height
}

func (s *webcamStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	_ = s.vc.Close()
}
