package drinking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sipsense/go-sipsense/internal/log"
	"github.com/sipsense/go-sipsense/pkg/debug"
	"github.com/sipsense/go-sipsense/pkg/detect"
	"github.com/sipsense/go-sipsense/pkg/geometry"
)

// FrameSource is the interface for capturing camera frames.
type FrameSource interface {
	CaptureJPEG() ([]byte, error)
}

// Snapshot is the monitor's externally visible state, for the dashboard.
type Snapshot struct {
	FaceDetected   bool      `json:"face_detected"`
	ObjectDetected bool      `json:"object_detected"`
	CurrentClass   string    `json:"current_class,omitempty"`
	Drinking       bool      `json:"drinking"`
	State          string    `json:"state"`
	LastEvalAt     time.Time `json:"last_eval_at"`
}

// Monitor drives the fusion pipeline: it samples the face and object
// streams at their own rates, holds the latest value of each, and feeds
// the rate-limited overlap verdict into the session state machine.
//
// The two streams are deliberately not synchronized; fusion always uses
// whatever was observed most recently, which may be frames apart.
type Monitor struct {
	cfg       Config
	video     FrameSource
	faces     detect.FaceDetector
	objects   detect.ObjectDetector
	whitelist detect.Whitelist
	session   *Session

	// now is the clock; tests substitute a fake.
	now func() time.Time

	// wg tracks in-flight detection goroutines so Run does not return
	// while a detector is still touching the camera or model handles.
	wg sync.WaitGroup

	mu           sync.Mutex
	keypoints    geometry.Keypoints
	lastFaceAt   time.Time
	detections   []detect.Object
	lastObjectAt time.Time
	lastEvalAt   time.Time
	snapshot     Snapshot
	faceBusy     bool
	objectBusy   bool

	// OnFrame receives each captured JPEG, for the dashboard feed.
	OnFrame func(jpeg []byte)

	// OnStarted fires when a drinking session is confirmed.
	OnStarted func(class string, at time.Time)

	// OnEvent fires when a completed session qualified as a real sip.
	OnEvent func(Event)

	// OnState fires whenever the snapshot changes.
	OnState func(Snapshot)
}

// NewMonitor creates a monitor over the given collaborators.
// video may be nil when the streams are fed externally via ObserveFace
// and ObserveObjects.
func NewMonitor(cfg Config, video FrameSource, faces detect.FaceDetector, objects detect.ObjectDetector) *Monitor {
	return &Monitor{
		cfg:       cfg,
		video:     video,
		faces:     faces,
		objects:   objects,
		whitelist: detect.NewWhitelist(cfg.Classes),
		session:   NewSession(cfg.Session),
		now:       time.Now,
	}
}

// Snapshot returns the current externally visible state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Reset abandons any in-flight drinking session without emitting an
// event. A history reset reaches through here so a sip spanning the
// reset cannot log into the just-cleared history.
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.session.Reset()
	m.snapshot.Drinking = false
	m.snapshot.CurrentClass = ""
	m.snapshot.State = m.session.State().String()
	snap := m.snapshot
	m.mu.Unlock()

	if m.OnState != nil {
		m.OnState(snap)
	}
}

// Run starts the detection and fusion loops and blocks until ctx is done.
// Cancelling the context stops every tick; no work outlives the session.
func (m *Monitor) Run(ctx context.Context) {
	faceTicker := time.NewTicker(m.cfg.FaceInterval)
	objectTicker := time.NewTicker(m.cfg.ObjectInterval)
	evalTicker := time.NewTicker(m.cfg.EvalInterval)
	defer faceTicker.Stop()
	defer objectTicker.Stop()
	defer evalTicker.Stop()

	log.Info("drink monitor started",
		"face_interval", m.cfg.FaceInterval,
		"object_interval", m.cfg.ObjectInterval,
		"iou_threshold", m.cfg.IoUThreshold)

	for {
		select {
		case <-ctx.Done():
			m.wg.Wait()
			m.Reset()
			log.Info("drink monitor stopped")
			return

		case <-faceTicker.C:
			if m.claimFace() {
				m.wg.Add(1)
				go m.detectFace()
			}

		case <-objectTicker.C:
			if m.claimObject() {
				m.wg.Add(1)
				go m.detectObjects()
			}

		case <-evalTicker.C:
			m.Evaluate(m.now())
		}
	}
}

// claimFace marks the face stream busy; a tick that fires while the
// previous detection is still running is skipped, not queued.
func (m *Monitor) claimFace() bool {
	if m.video == nil || m.faces == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.faceBusy {
		return false
	}
	m.faceBusy = true
	return true
}

func (m *Monitor) claimObject() bool {
	if m.video == nil || m.objects == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objectBusy {
		return false
	}
	m.objectBusy = true
	return true
}

func (m *Monitor) detectFace() {
	defer func() {
		m.mu.Lock()
		m.faceBusy = false
		m.mu.Unlock()
		m.wg.Done()
	}()

	frame, err := m.video.CaptureJPEG()
	if err != nil {
		debug.VisionLog("📷 face capture failed: %v\n", err)
		return
	}

	if m.OnFrame != nil {
		m.OnFrame(frame)
	}

	found, err := m.faces.DetectFaces(frame)
	if err != nil {
		debug.VisionLog("👁️  face detection failed: %v\n", err)
		return
	}

	if best, ok := detect.BestFace(found); ok {
		m.ObserveFace(best.Keypoints, m.now())
	}
}

func (m *Monitor) detectObjects() {
	defer func() {
		m.mu.Lock()
		m.objectBusy = false
		m.mu.Unlock()
		m.wg.Done()
	}()

	frame, err := m.video.CaptureJPEG()
	if err != nil {
		debug.VisionLog("📷 object capture failed: %v\n", err)
		return
	}

	found, err := m.objects.DetectObjects(frame)
	if err != nil {
		debug.VisionLog("🔍 object detection failed: %v\n", err)
		return
	}

	m.ObserveObjects(found, m.now())
}

// ObserveFace records the latest face keypoints. A nil set is ignored;
// absence is expressed by the grace period running out.
func (m *Monitor) ObserveFace(kp geometry.Keypoints, now time.Time) {
	if len(kp) == 0 {
		return
	}
	m.mu.Lock()
	m.keypoints = kp
	m.lastFaceAt = now
	m.mu.Unlock()
}

// ObserveObjects records the latest object detections. The list is
// whitelisted and sorted by descending confidence before storage so the
// classifier's first match is the most confident vessel.
func (m *Monitor) ObserveObjects(objects []detect.Object, now time.Time) {
	kept := m.whitelist.Filter(objects)
	if len(kept) == 0 {
		return
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})

	m.mu.Lock()
	m.detections = kept
	m.lastObjectAt = now
	m.mu.Unlock()
}

// Evaluate runs one fusion step at the given time. Calls arriving faster
// than EvalInterval are skipped so debounce timing stays deterministic.
func (m *Monitor) Evaluate(now time.Time) {
	m.mu.Lock()

	if !m.lastEvalAt.IsZero() && now.Sub(m.lastEvalAt) < m.cfg.EvalInterval {
		m.mu.Unlock()
		return
	}
	m.lastEvalAt = now

	var kp geometry.Keypoints
	if !m.lastFaceAt.IsZero() && now.Sub(m.lastFaceAt) <= m.cfg.Grace {
		kp = m.keypoints
	}

	var objects []detect.Object
	if !m.lastObjectAt.IsZero() && now.Sub(m.lastObjectAt) <= m.cfg.Grace {
		objects = m.detections
	}

	obj, overlapping := Classify(kp, objects, m.cfg.IoUThreshold)

	var class string
	if overlapping {
		class = obj.ClassName
	}
	res := m.session.Observe(overlapping, class, now)

	prev := m.snapshot
	m.snapshot = Snapshot{
		FaceDetected:   kp != nil,
		ObjectDetected: objects != nil,
		CurrentClass:   class,
		Drinking:       m.session.Active(),
		State:          m.session.State().String(),
		LastEvalAt:     now,
	}
	changed := m.snapshot.FaceDetected != prev.FaceDetected ||
		m.snapshot.ObjectDetected != prev.ObjectDetected ||
		m.snapshot.CurrentClass != prev.CurrentClass ||
		m.snapshot.Drinking != prev.Drinking ||
		m.snapshot.State != prev.State
	snap := m.snapshot

	m.mu.Unlock()

	if res.Started {
		log.Info("drinking started", "class", class)
		if m.OnStarted != nil {
			m.OnStarted(class, now)
		}
	}
	if res.Stopped && res.Event == nil {
		log.Debug("drinking session discarded as noise")
	}
	if res.Event != nil {
		log.Info("sip recorded",
			"class", res.Event.Class,
			"duration", res.Event.Duration)
		if m.OnEvent != nil {
			m.OnEvent(*res.Event)
		}
	}
	if changed && m.OnState != nil {
		m.OnState(snap)
	}
}

// SetClock substitutes the monitor's clock, for tests.
func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
}
