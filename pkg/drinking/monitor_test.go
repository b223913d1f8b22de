package drinking

import (
	"context"
	"testing"
	"time"

	"github.com/sipsense/go-sipsense/pkg/detect"
	"github.com/sipsense/go-sipsense/pkg/geometry"
)

func testMonitorConfig() Config {
	cfg := DefaultConfig()
	cfg.EvalInterval = 100 * time.Millisecond
	cfg.Grace = time.Second
	cfg.Session = testSessionConfig()
	return cfg
}

func cupAt(x, y float64) detect.Object {
	return detect.Object{
		Box:        geometry.Box{X: x, Y: y, W: 60, H: 60},
		Confidence: 0.9,
		ClassName:  "cup",
	}
}

func TestMonitor_FullSipFlow(t *testing.T) {
	m := NewMonitor(testMonitorConfig(), nil, nil, nil)

	var events []Event
	var started int
	m.OnEvent = func(ev Event) { events = append(events, ev) }
	m.OnStarted = func(string, time.Time) { started++ }

	now := sessionStart
	kp := mouthAt(100, 100)

	// Face at 15Hz-ish, objects at 5Hz-ish, eval at 10Hz: overlap for 3s
	for elapsed := time.Duration(0); elapsed <= 3*time.Second; elapsed += 100 * time.Millisecond {
		at := now.Add(elapsed)
		m.ObserveFace(kp, at)
		if elapsed%(200*time.Millisecond) == 0 {
			m.ObserveObjects([]detect.Object{cupAt(100, 100)}, at)
		}
		m.Evaluate(at)
	}

	if started != 1 {
		t.Fatalf("confirmed start fired %d times, want 1", started)
	}
	if !m.Snapshot().Drinking {
		t.Fatal("snapshot should report drinking")
	}

	// Object leaves the frame; evaluations continue past grace + debounce
	end := now.Add(3 * time.Second)
	for elapsed := 100 * time.Millisecond; elapsed <= 2*time.Second; elapsed += 100 * time.Millisecond {
		m.Evaluate(end.Add(elapsed))
	}

	if len(events) != 1 {
		t.Fatalf("got %d sip events, want 1", len(events))
	}
	if events[0].Class != "cup" {
		t.Errorf("event class: got %q, want cup", events[0].Class)
	}
	if m.Snapshot().Drinking {
		t.Error("snapshot should no longer report drinking")
	}
}

func TestMonitor_ResetAbandonsActiveSession(t *testing.T) {
	m := NewMonitor(testMonitorConfig(), nil, nil, nil)

	var events []Event
	m.OnEvent = func(ev Event) { events = append(events, ev) }

	// Confirm a session well past the minimum sip duration
	now := sessionStart
	for elapsed := time.Duration(0); elapsed <= 3*time.Second; elapsed += 100 * time.Millisecond {
		at := now.Add(elapsed)
		m.ObserveFace(mouthAt(100, 100), at)
		m.ObserveObjects([]detect.Object{cupAt(100, 100)}, at)
		m.Evaluate(at)
	}
	if !m.Snapshot().Drinking {
		t.Fatal("session should be active before reset")
	}

	// History reset mid-sip: the in-flight session is abandoned
	m.Reset()

	snap := m.Snapshot()
	if snap.Drinking {
		t.Error("snapshot still reports drinking after reset")
	}
	if snap.State != StateIdle.String() {
		t.Errorf("state after reset: got %q, want idle", snap.State)
	}

	// The overlap then ends; nothing may be emitted for the pre-reset sip
	end := now.Add(3 * time.Second)
	for elapsed := 100 * time.Millisecond; elapsed <= 2*time.Second; elapsed += 100 * time.Millisecond {
		m.Evaluate(end.Add(elapsed))
	}

	if len(events) != 0 {
		t.Fatalf("abandoned session emitted %d event(s), want 0", len(events))
	}
}

func TestMonitor_RateLimitSkipsFastEvaluations(t *testing.T) {
	m := NewMonitor(testMonitorConfig(), nil, nil, nil)

	now := sessionStart
	kp := mouthAt(100, 100)
	m.ObserveFace(kp, now)
	m.ObserveObjects([]detect.Object{cupAt(100, 100)}, now)

	// Burst of evaluations 10ms apart: only the first counts, so the
	// session cannot reach its confirm threshold.
	for i := 0; i < 20; i++ {
		m.Evaluate(now.Add(time.Duration(i) * 10 * time.Millisecond))
	}

	if m.Snapshot().Drinking {
		t.Error("rate-limited evaluations should not have confirmed a session")
	}
}

func TestMonitor_GracePeriodExpiry(t *testing.T) {
	m := NewMonitor(testMonitorConfig(), nil, nil, nil)

	now := sessionStart
	m.ObserveFace(mouthAt(100, 100), now)
	m.ObserveObjects([]detect.Object{cupAt(100, 100)}, now)

	m.Evaluate(now)
	snap := m.Snapshot()
	if !snap.FaceDetected || !snap.ObjectDetected {
		t.Fatalf("fresh observations should be visible: %+v", snap)
	}

	// Within the grace window stale values still count
	m.Evaluate(now.Add(500 * time.Millisecond))
	snap = m.Snapshot()
	if !snap.FaceDetected || !snap.ObjectDetected {
		t.Errorf("observations inside grace should still count: %+v", snap)
	}

	// Past the grace window both streams read as absent
	m.Evaluate(now.Add(1500 * time.Millisecond))
	snap = m.Snapshot()
	if snap.FaceDetected || snap.ObjectDetected {
		t.Errorf("observations past grace should be treated as gone: %+v", snap)
	}
}

func TestMonitor_WhitelistAndConfidenceOrdering(t *testing.T) {
	m := NewMonitor(testMonitorConfig(), nil, nil, nil)

	now := sessionStart
	m.ObserveFace(mouthAt(100, 100), now)

	person := detect.Object{
		Box:        geometry.Box{X: 100, Y: 100, W: 200, H: 300},
		Confidence: 0.99,
		ClassName:  "person",
	}
	cup := cupAt(100, 100)
	bottle := detect.Object{
		Box:        geometry.Box{X: 100, Y: 100, W: 50, H: 90},
		Confidence: 0.95,
		ClassName:  "bottle",
	}

	// person must be filtered out; bottle outranks cup by confidence
	m.ObserveObjects([]detect.Object{person, cup, bottle}, now)

	for i := 0; i < 3; i++ {
		m.Evaluate(now.Add(time.Duration(i) * 100 * time.Millisecond))
	}

	snap := m.Snapshot()
	if snap.CurrentClass != "bottle" {
		t.Errorf("current class: got %q, want the most confident vessel", snap.CurrentClass)
	}
}

// blockingSource parks CaptureJPEG until released, simulating a slow
// camera read.
type blockingSource struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) CaptureJPEG() ([]byte, error) {
	b.started <- struct{}{}
	<-b.release
	return []byte{0xff, 0xd8}, nil
}

type stubFaceDetector struct{}

func (stubFaceDetector) DetectFaces([]byte) ([]detect.Face, error) { return nil, nil }
func (stubFaceDetector) Close() error                              { return nil }

func TestMonitor_RunWaitsForInflightDetection(t *testing.T) {
	src := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	cfg := testMonitorConfig()
	cfg.FaceInterval = 5 * time.Millisecond
	m := NewMonitor(cfg, src, stubFaceDetector{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	// Wait for a detection goroutine to be mid-capture, then cancel
	<-src.started
	cancel()

	// Run must not return while the capture is still in flight; the
	// caller would otherwise close the camera underneath it
	select {
	case <-done:
		t.Fatal("Run returned with a detection still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(src.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the detection finished")
	}
}

func TestMonitor_NoObjectsMeansNoSession(t *testing.T) {
	m := NewMonitor(testMonitorConfig(), nil, nil, nil)

	now := sessionStart
	for i := 0; i < 10; i++ {
		at := now.Add(time.Duration(i) * 100 * time.Millisecond)
		m.ObserveFace(mouthAt(100, 100), at)
		m.Evaluate(at)
	}

	snap := m.Snapshot()
	if snap.Drinking || snap.ObjectDetected {
		t.Errorf("face alone must not trigger a session: %+v", snap)
	}
}
