package geometry

import (
	"math"
	"testing"
)

func TestMouthRegion_Absent(t *testing.T) {
	if _, ok := MouthRegion(nil); ok {
		t.Error("nil keypoints should yield no mouth region")
	}

	if _, ok := MouthRegion(Keypoints{}); ok {
		t.Error("empty keypoints should yield no mouth region")
	}

	// Landmarks present, but none of them lip landmarks
	kp := Keypoints{
		1: {X: 10, Y: 10},
		2: {X: 20, Y: 20},
		5: {X: 30, Y: 30},
	}
	if _, ok := MouthRegion(kp); ok {
		t.Error("keypoints without lip landmarks should yield no mouth region")
	}
}

func TestMouthRegion_PartialLandmarks(t *testing.T) {
	// Only the two mouth corners, as emitted by a 5-landmark face detector
	kp := Keypoints{
		LeftMouthCorner:  {X: 100, Y: 200},
		RightMouthCorner: {X: 140, Y: 210},
	}

	box, ok := MouthRegion(kp)
	if !ok {
		t.Fatal("two lip landmarks should still produce a mouth region")
	}

	// Raw extent 40x10, padded 20% per side
	if math.Abs(box.W-40*1.4) > 1e-9 {
		t.Errorf("width: got %v, want %v", box.W, 40*1.4)
	}
	if math.Abs(box.H-10*1.4) > 1e-9 {
		t.Errorf("height: got %v, want %v", box.H, 10*1.4)
	}
	if box.X != 120 || box.Y != 205 {
		t.Errorf("center: got (%v,%v), want (120,205)", box.X, box.Y)
	}
}

func TestMouthRegion_FullLandmarks(t *testing.T) {
	kp := Keypoints{
		UpperLipCenter:   {X: 120, Y: 195},
		UpperLipTop:      {X: 120, Y: 198},
		UpperLipBottom:   {X: 120, Y: 202},
		LowerLipTop:      {X: 120, Y: 204},
		LowerLipBottom:   {X: 120, Y: 208},
		LowerLipCenter:   {X: 120, Y: 212},
		LeftMouthCorner:  {X: 100, Y: 205},
		RightMouthCorner: {X: 140, Y: 205},
	}

	box, ok := MouthRegion(kp)
	if !ok {
		t.Fatal("expected a mouth region")
	}

	// Extent: x 100..140, y 195..212
	if box.X != 120 {
		t.Errorf("center x: got %v, want 120", box.X)
	}
	if math.Abs(box.Y-203.5) > 1e-9 {
		t.Errorf("center y: got %v, want 203.5", box.Y)
	}
	if math.Abs(box.W-40*1.4) > 1e-9 || math.Abs(box.H-17*1.4) > 1e-9 {
		t.Errorf("padded size: got %vx%v, want %vx%v", box.W, box.H, 40*1.4, 17*1.4)
	}

	// Irrelevant landmarks must not widen the region
	kp[400] = Point{X: 0, Y: 0}
	again, _ := MouthRegion(kp)
	if again != box {
		t.Errorf("non-lip landmark changed the region: %+v vs %+v", again, box)
	}
}

func TestKeypointsFromSlice(t *testing.T) {
	if KeypointsFromSlice(nil) != nil {
		t.Error("empty slice should convert to nil keypoints")
	}

	pts := []Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}
	kp := KeypointsFromSlice(pts)

	if len(kp) != 3 {
		t.Fatalf("len: got %d, want 3", len(kp))
	}
	if p, ok := kp[1]; !ok || p.X != 3 || p.Y != 4 {
		t.Errorf("index 1: got %+v ok=%v", p, ok)
	}
}
