// Package detect provides the face and object detection backends that feed
// the drinking pipeline. Detectors are opaque producers of landmarks and
// boxes; everything downstream treats their output as best-effort.
package detect

import "github.com/sipsense/go-sipsense/pkg/geometry"

// Face is a detected face with whatever landmarks the backend emits.
type Face struct {
	Box        geometry.Box
	Confidence float64
	Keypoints  geometry.Keypoints
}

// Object is a detected object with class info.
type Object struct {
	Box        geometry.Box
	Confidence float64 // 0-1
	ClassID    int     // COCO class ID (-1 when the backend has no taxonomy)
	ClassName  string
}

// FaceDetector is the interface for face detection backends.
type FaceDetector interface {
	// DetectFaces finds faces in the JPEG image.
	DetectFaces(jpeg []byte) ([]Face, error)

	// Close releases resources.
	Close() error
}

// ObjectDetector is the interface for object detection backends.
type ObjectDetector interface {
	// DetectObjects finds objects in the JPEG image.
	DetectObjects(jpeg []byte) ([]Object, error)

	// Close releases resources.
	Close() error
}

// BestFace picks the face to track when multiple are found.
// Priority: confidence * 0.7 + relative area * 0.3.
func BestFace(faces []Face) (Face, bool) {
	if len(faces) == 0 {
		return Face{}, false
	}

	if len(faces) == 1 {
		return faces[0], true
	}

	maxArea := 0.0
	for _, f := range faces {
		if a := f.Box.Area(); a > maxArea {
			maxArea = a
		}
	}

	bestScore := -1.0
	best := faces[0]
	for _, f := range faces {
		area := 0.0
		if maxArea > 0 {
			area = f.Box.Area() / maxArea
		}
		score := f.Confidence*0.7 + area*0.3
		if score > bestScore {
			bestScore = score
			best = f
		}
	}

	return best, true
}
