package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/sipsense/go-sipsense/internal/log"
)

// Webcam captures JPEG frames from a local V4L2 device. Safe for
// concurrent CaptureJPEG calls; reads are serialized.
type Webcam struct {
	cfg Config

	mu   sync.Mutex
	cap  *gocv.VideoCapture
	mat  gocv.Mat
	open bool
}

// Open opens the configured device and applies resolution and rate.
func Open(cfg Config) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}

	cap, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.DeviceID, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(cfg.FPS))

	log.Info("camera opened",
		"device", cfg.DeviceID,
		"width", int(cap.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(cap.Get(gocv.VideoCaptureFrameHeight)))

	return &Webcam{
		cfg:  cfg,
		cap:  cap,
		mat:  gocv.NewMat(),
		open: true,
	}, nil
}

// CaptureJPEG grabs one frame and returns it JPEG-encoded.
func (w *Webcam) CaptureJPEG() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return nil, fmt.Errorf("camera closed")
	}
	if ok := w.cap.Read(&w.mat); !ok || w.mat.Empty() {
		return nil, fmt.Errorf("camera read failed")
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, w.mat,
		[]int{gocv.IMWriteJpegQuality, w.cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// Copy out: the buffer is reused by gocv
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return nil
	}
	w.open = false
	w.mat.Close()
	return w.cap.Close()
}
