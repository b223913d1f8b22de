package detect

import "strings"

// COCOClasses contains the 80 COCO class names, indexed by class ID.
var COCOClasses = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator",
	"book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// DefaultClasses is the default whitelist of drinkable-vessel classes.
var DefaultClasses = []string{"cup", "glass", "bottle"}

// Whitelist filters detections down to the vessel classes we care about.
// Matching is case-insensitive, and detector-specific aliases (COCO's
// "wine glass") normalize to the canonical class name.
type Whitelist map[string]string

// classAliases maps detector class names to canonical vessel names.
var classAliases = map[string]string{
	"wine glass": "glass",
}

// NewWhitelist builds a whitelist from canonical class names.
func NewWhitelist(classes []string) Whitelist {
	w := make(Whitelist, len(classes))
	for _, c := range classes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		w[c] = c
		for alias, canonical := range classAliases {
			if canonical == c {
				w[alias] = c
			}
		}
	}
	return w
}

// Match reports whether a detector class name is whitelisted, and returns
// the canonical class name when it is.
func (w Whitelist) Match(className string) (string, bool) {
	canonical, ok := w[strings.ToLower(strings.TrimSpace(className))]
	return canonical, ok
}

// Filter returns the whitelisted detections with class names canonicalized,
// preserving input order.
func (w Whitelist) Filter(objects []Object) []Object {
	var kept []Object
	for _, obj := range objects {
		canonical, ok := w.Match(obj.ClassName)
		if !ok {
			continue
		}
		obj.ClassName = canonical
		kept = append(kept, obj)
	}
	return kept
}
