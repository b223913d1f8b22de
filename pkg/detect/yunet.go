package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/sipsense/go-sipsense/pkg/debug"
	"github.com/sipsense/go-sipsense/pkg/geometry"
)

// FaceConfig holds YuNet face detector configuration.
type FaceConfig struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence (default 0.5)
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultFaceConfig returns production defaults for YuNet.
func DefaultFaceConfig() FaceConfig {
	return FaceConfig{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection.
// YuNet emits five landmarks per face; the two mouth corners are mapped
// onto the canonical mesh indices so the geometry package can derive a
// mouth region from them.
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   FaceConfig
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a new YuNet face detector.
func NewYuNet(cfg FaceConfig) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
	}, nil
}

// DetectFaces finds faces in the JPEG image.
func (d *YuNetDetector) DetectFaces(jpeg []byte) ([]Face, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	// Update detector input size to match image
	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	// YuNet output format (15 columns):
	// 0-3: x, y, w, h (bounding box in pixels)
	// 4-13: 5 facial landmarks (x,y pairs):
	//       right eye, left eye, nose tip, right mouth corner, left mouth corner
	// 14: face score
	var detections []Face
	for r := 0; r < faces.Rows(); r++ {
		x := float64(faces.GetFloatAt(r, 0))
		y := float64(faces.GetFloatAt(r, 1))
		w := float64(faces.GetFloatAt(r, 2))
		h := float64(faces.GetFloatAt(r, 3))
		score := float64(faces.GetFloatAt(r, 14))

		kp := geometry.Keypoints{
			geometry.RightMouthCorner: {
				X: float64(faces.GetFloatAt(r, 10)),
				Y: float64(faces.GetFloatAt(r, 11)),
			},
			geometry.LeftMouthCorner: {
				X: float64(faces.GetFloatAt(r, 12)),
				Y: float64(faces.GetFloatAt(r, 13)),
			},
		}

		detections = append(detections, Face{
			Box: geometry.Box{
				X: x + w/2,
				Y: y + h/2,
				W: w,
				H: h,
			},
			Confidence: score,
			Keypoints:  kp,
		})
	}

	if len(detections) > 0 {
		debug.VisionLog("👁️  YuNet found %d face(s)\n", len(detections))
	}

	return detections, nil
}

// Close releases the detector resources.
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
