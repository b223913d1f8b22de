package geometry

import "math"

// MediaPipe Face Mesh landmark indices for the lip area.
// See: https://github.com/google/mediapipe/blob/master/mediapipe/modules/face_geometry/data/canonical_face_model_uv_visualization.png
const (
	UpperLipCenter   = 0
	UpperLipTop      = 13
	UpperLipBottom   = 14
	LowerLipTop      = 15
	LowerLipBottom   = 16
	LowerLipCenter   = 17
	LeftMouthCorner  = 61
	RightMouthCorner = 291
)

// lipIndices are the landmark indices that define the mouth region.
var lipIndices = [...]int{
	UpperLipCenter,
	UpperLipTop,
	UpperLipBottom,
	LowerLipTop,
	LowerLipBottom,
	LowerLipCenter,
	LeftMouthCorner,
	RightMouthCorner,
}

// MouthPadding expands the raw lip extent by this fraction of its width and
// height on each side. The padded region tolerates landmark jitter and
// partial occlusion of the lips by the object being drunk from.
const MouthPadding = 0.2

// Keypoints is a face landmark set indexed by canonical mesh position.
// Detectors that emit only a few landmarks set just those indices; a nil
// map means no face. Sparse by design so both a full 468-point mesh and a
// 5-landmark face detector can feed the same pipeline.
type Keypoints map[int]Point

// KeypointsFromSlice converts a dense, positionally indexed landmark list
// into a Keypoints set.
func KeypointsFromSlice(pts []Point) Keypoints {
	if len(pts) == 0 {
		return nil
	}
	kp := make(Keypoints, len(pts))
	for i, p := range pts {
		kp[i] = p
	}
	return kp
}

// MouthRegion derives the padded mouth bounding box from face keypoints.
// It collects whichever lip landmarks are present; if none are, it reports
// false. Absence of a mouth region is valid input downstream, not an error.
func MouthRegion(kp Keypoints) (Box, bool) {
	if len(kp) == 0 {
		return Box{}, false
	}

	var (
		minX, minY = math.MaxFloat64, math.MaxFloat64
		maxX, maxY = -math.MaxFloat64, -math.MaxFloat64
		found      bool
	)

	for _, idx := range lipIndices {
		p, ok := kp[idx]
		if !ok {
			continue
		}
		found = true
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	if !found {
		return Box{}, false
	}

	return Box{
		X: (minX + maxX) / 2,
		Y: (minY + maxY) / 2,
		W: (maxX - minX) * (1 + MouthPadding*2),
		H: (maxY - minY) * (1 + MouthPadding*2),
	}, true
}
