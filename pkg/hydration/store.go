// Package hydration provides the authoritative log of confirmed hydration
// events, the derived reminder status, and its persistence across restarts.
package hydration

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sipsense/go-sipsense/internal/log"
)

// DefaultIntervalMinutes is the reminder interval used until configured.
const DefaultIntervalMinutes = 30

// Event is one confirmed drink, immutable once appended.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Class     string    `json:"class"` // Vessel class that was detected
}

// Readiness tracks which external collaborators have come up.
type Readiness struct {
	Camera        bool `json:"camera"`
	FaceModel     bool `json:"face_model"`
	ObjectModel   bool `json:"object_model"`
	Notifications bool `json:"notifications"`

	// NotificationsSupported is false when the host has no notification
	// service; the flag is then excluded from full initialization.
	NotificationsSupported bool `json:"notifications_supported"`
}

// Store owns all hydration tracking state. Every mutation goes through its
// methods and is serialized by a single mutex; derived queries take an
// explicit now so they are deterministic under test.
type Store struct {
	mu sync.Mutex

	events          []Event
	intervalMinutes int
	soundEnabled    bool

	trackingStartedAt time.Time
	lastEventAt       time.Time // Zero when no event this session
	firstEventOfDay   time.Time // Zero when no event today

	readiness Readiness

	backend Backend

	// OnEvent fires after each appended event, outside the store lock.
	OnEvent func(Event)
}

// Open creates a store, restores the persisted subset from backend, and
// applies the startup rules: stale cross-day history is discarded and
// tracking always restarts at now. backend may be nil for an in-memory
// store.
func Open(backend Backend, now time.Time) *Store {
	s := &Store{
		intervalMinutes:   DefaultIntervalMinutes,
		trackingStartedAt: now,
		backend:           backend,
	}

	s.restore(now)
	return s
}

// restore loads persisted state, tolerating every malformed field by
// falling back to defaults. Startup must never fail on bad state.
func (s *Store) restore(now time.Time) {
	if s.backend == nil {
		return
	}

	persisted, err := load(s.backend)
	if err != nil {
		log.Warn("discarding unreadable hydration state", "error", err)
		return
	}
	if persisted == nil {
		return
	}

	if persisted.IntervalMinutes >= 1 {
		s.intervalMinutes = persisted.IntervalMinutes
	} else if persisted.IntervalMinutes != 0 {
		log.Warn("ignoring persisted interval", "minutes", persisted.IntervalMinutes)
	}
	s.soundEnabled = persisted.SoundEnabled

	firstOfDay, ok := persisted.firstEventOfDay()
	if !ok || !sameDay(firstOfDay, now) {
		// Stale cross-day data is never shown as today
		if ok {
			log.Info("discarding hydration log from a previous day")
		}
		return
	}

	s.firstEventOfDay = firstOfDay
	s.events = persisted.restoredEvents()
	if n := len(s.events); n > 0 {
		s.lastEventAt = s.events[n-1].Timestamp
	}
}

// AddEvent appends a confirmed hydration event at now and persists.
func (s *Store) AddEvent(class string, now time.Time) Event {
	ev := Event{
		ID:        uuid.New(),
		Timestamp: now,
		Class:     class,
	}

	s.mu.Lock()
	s.events = append(s.events, ev)
	s.lastEventAt = now
	if s.firstEventOfDay.IsZero() {
		s.firstEventOfDay = now
	}
	s.persistLocked()
	cb := s.OnEvent
	s.mu.Unlock()

	if cb != nil {
		cb(ev)
	}
	return ev
}

// TimeSinceLastHydration returns the elapsed time since the last event,
// or since tracking started when the user has never drunk this session.
// The second return is false only when tracking has not started.
func (s *Store) TimeSinceLastHydration(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeSinceLocked(now)
}

func (s *Store) timeSinceLocked(now time.Time) (time.Duration, bool) {
	switch {
	case !s.lastEventAt.IsZero():
		return now.Sub(s.lastEventAt), true
	case !s.trackingStartedAt.IsZero():
		return now.Sub(s.trackingStartedAt), true
	default:
		return 0, false
	}
}

// IsOverdue reports whether the elapsed time has reached the reminder
// interval. False when tracking has not started.
func (s *Store) IsOverdue(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed, ok := s.timeSinceLocked(now)
	if !ok {
		return false
	}
	return elapsed >= time.Duration(s.intervalMinutes)*time.Minute
}

// TodayCount returns how many events fall within the current local
// calendar day. The midnight boundary is evaluated per query, not cached.
func (s *Store) TodayCount(now time.Time) int {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, ev := range s.events {
		if !ev.Timestamp.Before(midnight) {
			count++
		}
	}
	return count
}

// Events returns a copy of the event log in append order.
func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Interval returns the reminder interval.
func (s *Store) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.intervalMinutes) * time.Minute
}

// IntervalMinutes returns the reminder interval in minutes.
func (s *Store) IntervalMinutes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intervalMinutes
}

// SetInterval updates the reminder interval. Non-positive values are
// rejected at the boundary rather than corrupting state. A change takes
// effect on the next overdue query; the event log is untouched.
func (s *Store) SetInterval(minutes int) error {
	if minutes < 1 {
		return fmt.Errorf("interval must be at least 1 minute, got %d", minutes)
	}

	s.mu.Lock()
	s.intervalMinutes = minutes
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// SoundEnabled returns the notification-sound preference.
func (s *Store) SoundEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.soundEnabled
}

// SetSoundEnabled updates the notification-sound preference.
func (s *Store) SetSoundEnabled(enabled bool) {
	s.mu.Lock()
	s.soundEnabled = enabled
	s.persistLocked()
	s.mu.Unlock()
}

// Reset clears history but not configuration: the event log and the
// per-day bookkeeping go, the interval, sound preference, and tracking
// start stay. Tracking continues uninterrupted.
func (s *Store) Reset() {
	s.mu.Lock()
	s.events = nil
	s.lastEventAt = time.Time{}
	s.firstEventOfDay = time.Time{}
	s.persistLocked()
	s.mu.Unlock()

	log.Info("hydration history cleared")
}

// TrackingStartedAt returns when this tracking session began.
func (s *Store) TrackingStartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trackingStartedAt
}

// SetCameraReady records camera readiness.
func (s *Store) SetCameraReady(ready bool) { s.setReadiness(func(r *Readiness) { r.Camera = ready }) }

// SetFaceModelReady records face model readiness.
func (s *Store) SetFaceModelReady(ready bool) {
	s.setReadiness(func(r *Readiness) { r.FaceModel = ready })
}

// SetObjectModelReady records object model readiness.
func (s *Store) SetObjectModelReady(ready bool) {
	s.setReadiness(func(r *Readiness) { r.ObjectModel = ready })
}

// SetNotificationsSupported records whether the host environment has a
// notification service at all.
func (s *Store) SetNotificationsSupported(supported bool) {
	s.setReadiness(func(r *Readiness) { r.NotificationsSupported = supported })
}

// SetNotificationsReady records notification permission.
func (s *Store) SetNotificationsReady(ready bool) {
	s.setReadiness(func(r *Readiness) { r.Notifications = ready })
}

func (s *Store) setReadiness(apply func(*Readiness)) {
	s.mu.Lock()
	apply(&s.readiness)
	s.mu.Unlock()
}

// Readiness returns the current readiness flags.
func (s *Store) Readiness() Readiness {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readiness
}

// IsFullyInitialized reports whether every applicable collaborator is
// ready. The notification flag only participates when the environment
// supports notifications.
func (s *Store) IsFullyInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ready := s.readiness.Camera && s.readiness.FaceModel && s.readiness.ObjectModel
	if s.readiness.NotificationsSupported {
		ready = ready && s.readiness.Notifications
	}
	return ready
}

// persistLocked writes the persisted subset. Callers hold s.mu.
func (s *Store) persistLocked() {
	if s.backend == nil {
		return
	}
	if err := save(s.backend, s.snapshotLocked()); err != nil {
		log.Error("persist hydration state", "error", err)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
