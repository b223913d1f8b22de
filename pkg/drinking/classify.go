// Package drinking fuses the face and object detection streams into
// debounced drinking sessions and confirmed sip events.
package drinking

import (
	"github.com/sipsense/go-sipsense/pkg/detect"
	"github.com/sipsense/go-sipsense/pkg/geometry"
)

// Classify decides whether any candidate object overlaps the mouth region
// in a single frame. It returns the first detection, in the supplied order,
// whose IoU against the padded mouth box meets the threshold.
//
// First-match is the tie-break on purpose: callers that want the largest or
// most confident object pre-sort the detection list. Missing keypoints,
// an empty detection list, or an absent mouth region all classify as no
// overlap; none of these are errors.
func Classify(kp geometry.Keypoints, objects []detect.Object, threshold float64) (detect.Object, bool) {
	if len(kp) == 0 || len(objects) == 0 {
		return detect.Object{}, false
	}

	mouth, ok := geometry.MouthRegion(kp)
	if !ok {
		return detect.Object{}, false
	}

	for _, obj := range objects {
		if geometry.IoU(mouth, obj.Box) >= threshold {
			return obj, true
		}
	}

	return detect.Object{}, false
}
