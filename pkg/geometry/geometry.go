// Package geometry provides the box math for drink detection: deriving a
// mouth region from face landmarks and scoring overlap between boxes.
package geometry

import "math"

// Point is a 2D coordinate in the video frame's pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned bounding box in center form.
type Box struct {
	X float64 `json:"x"` // Center x
	Y float64 `json:"y"` // Center y
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Left returns the left edge of the box.
func (b Box) Left() float64 { return b.X - b.W/2 }

// Right returns the right edge of the box.
func (b Box) Right() float64 { return b.X + b.W/2 }

// Top returns the top edge of the box.
func (b Box) Top() float64 { return b.Y - b.H/2 }

// Bottom returns the bottom edge of the box.
func (b Box) Bottom() float64 { return b.Y + b.H/2 }

// Area returns the area of the box.
func (b Box) Area() float64 { return b.W * b.H }

// FromCorners builds a center-form box from two opposite corners.
func FromCorners(minX, minY, maxX, maxY float64) Box {
	return Box{
		X: (minX + maxX) / 2,
		Y: (minY + maxY) / 2,
		W: maxX - minX,
		H: maxY - minY,
	}
}

// IoU computes Intersection-over-Union between two boxes.
// The result is in [0, 1] and symmetric in its arguments. Two degenerate
// boxes (zero union area) score 0 rather than dividing by zero.
func IoU(a, b Box) float64 {
	xOverlap := math.Max(0, math.Min(a.Right(), b.Right())-math.Max(a.Left(), b.Left()))
	yOverlap := math.Max(0, math.Min(a.Bottom(), b.Bottom())-math.Max(a.Top(), b.Top()))
	intersection := xOverlap * yOverlap

	union := a.Area() + b.Area() - intersection
	if union == 0 {
		return 0
	}

	return intersection / union
}
