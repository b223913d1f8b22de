package hydration

import (
	"testing"
	"time"
)

var storeStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestOverdueFollowsInterval(t *testing.T) {
	s := Open(nil, storeStart)
	if err := s.SetInterval(3); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}

	// No events yet: overdue is measured from tracking start
	if s.IsOverdue(storeStart.Add(179 * time.Second)) {
		t.Error("overdue before interval elapsed")
	}
	if !s.IsOverdue(storeStart.Add(181 * time.Second)) {
		t.Error("not overdue after interval elapsed")
	}
}

func TestAddEventResetsOverdue(t *testing.T) {
	s := Open(nil, storeStart)
	if err := s.SetInterval(3); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}

	drankAt := storeStart.Add(5 * time.Minute)
	s.AddEvent("cup", drankAt)

	if s.IsOverdue(drankAt.Add(time.Second)) {
		t.Error("overdue immediately after a drink")
	}
	if !s.IsOverdue(drankAt.Add(3 * time.Minute)) {
		t.Error("not overdue one interval after the drink")
	}

	elapsed, ok := s.TimeSinceLastHydration(drankAt.Add(90 * time.Second))
	if !ok || elapsed != 90*time.Second {
		t.Errorf("TimeSinceLastHydration = %v, %v; want 90s, true", elapsed, ok)
	}
}

func TestTodayCountUsesLocalMidnight(t *testing.T) {
	now := time.Date(2025, 6, 2, 1, 30, 0, 0, time.Local)
	s := Open(nil, now.Add(-26*time.Hour))

	s.AddEvent("cup", now.Add(-25*time.Hour))   // Yesterday
	s.AddEvent("bottle", now.Add(-time.Minute)) // Today
	s.AddEvent("glass", now)

	if got := s.TodayCount(now); got != 2 {
		t.Errorf("TodayCount = %d, want 2", got)
	}
	if got := len(s.Events()); got != 3 {
		t.Errorf("Events len = %d, want 3 (count never drops history)", got)
	}
}

func TestSetIntervalRejectsNonPositive(t *testing.T) {
	s := Open(nil, storeStart)

	for _, minutes := range []int{0, -1, -30} {
		if err := s.SetInterval(minutes); err == nil {
			t.Errorf("SetInterval(%d) accepted", minutes)
		}
	}
	if got := s.IntervalMinutes(); got != DefaultIntervalMinutes {
		t.Errorf("interval = %d after rejected updates, want %d", got, DefaultIntervalMinutes)
	}
}

func TestResetKeepsConfiguration(t *testing.T) {
	s := Open(nil, storeStart)
	if err := s.SetInterval(45); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}
	s.SetSoundEnabled(true)
	s.AddEvent("cup", storeStart.Add(time.Minute))

	s.Reset()

	if got := len(s.Events()); got != 0 {
		t.Errorf("Events len = %d after reset, want 0", got)
	}
	if got := s.IntervalMinutes(); got != 45 {
		t.Errorf("interval = %d after reset, want 45", got)
	}
	if !s.SoundEnabled() {
		t.Error("sound preference lost on reset")
	}
	if got := s.TrackingStartedAt(); !got.Equal(storeStart) {
		t.Errorf("tracking start = %v after reset, want %v", got, storeStart)
	}

	// Elapsed time falls back to tracking start, not zero
	elapsed, ok := s.TimeSinceLastHydration(storeStart.Add(10 * time.Minute))
	if !ok || elapsed != 10*time.Minute {
		t.Errorf("TimeSinceLastHydration = %v, %v; want 10m, true", elapsed, ok)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := t.TempDir() + "/hydration.json"
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	s := Open(NewJSONFile(path), now)
	if err := s.SetInterval(20); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}
	s.SetSoundEnabled(true)
	s.AddEvent("cup", now.Add(time.Minute))
	s.AddEvent("bottle", now.Add(2*time.Minute))

	// Same-day restart: history survives
	restartAt := now.Add(3 * time.Minute)
	r := Open(NewJSONFile(path), restartAt)

	if got := r.IntervalMinutes(); got != 20 {
		t.Errorf("restored interval = %d, want 20", got)
	}
	if !r.SoundEnabled() {
		t.Error("sound preference not restored")
	}
	events := r.Events()
	if len(events) != 2 {
		t.Fatalf("restored %d events, want 2", len(events))
	}
	if events[0].Class != "cup" || events[1].Class != "bottle" {
		t.Errorf("restored classes = %q, %q", events[0].Class, events[1].Class)
	}
	if got := r.TodayCount(restartAt); got != 2 {
		t.Errorf("TodayCount after restart = %d, want 2", got)
	}

	// Elapsed time resumes from the last restored event
	elapsed, ok := r.TimeSinceLastHydration(restartAt)
	if !ok || elapsed != time.Minute {
		t.Errorf("TimeSinceLastHydration = %v, %v; want 1m, true", elapsed, ok)
	}

	// Tracking start is never restored
	if got := r.TrackingStartedAt(); !got.Equal(restartAt) {
		t.Errorf("tracking start = %v, want %v", got, restartAt)
	}
}

func TestDayRolloverDiscardsHistory(t *testing.T) {
	path := t.TempDir() + "/hydration.json"
	yesterday := time.Date(2025, 6, 1, 22, 0, 0, 0, time.Local)

	s := Open(NewJSONFile(path), yesterday)
	if err := s.SetInterval(20); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}
	s.AddEvent("cup", yesterday.Add(time.Minute))

	// Next morning: events go, settings stay
	tomorrow := time.Date(2025, 6, 2, 8, 0, 0, 0, time.Local)
	r := Open(NewJSONFile(path), tomorrow)

	if got := len(r.Events()); got != 0 {
		t.Errorf("restored %d events across days, want 0", got)
	}
	if got := r.TodayCount(tomorrow); got != 0 {
		t.Errorf("TodayCount = %d across days, want 0", got)
	}
	if got := r.IntervalMinutes(); got != 20 {
		t.Errorf("restored interval = %d, want 20", got)
	}

	// Elapsed time restarts from the new session, not yesterday's drink
	elapsed, ok := r.TimeSinceLastHydration(tomorrow.Add(5 * time.Minute))
	if !ok || elapsed != 5*time.Minute {
		t.Errorf("TimeSinceLastHydration = %v, %v; want 5m, true", elapsed, ok)
	}
}

func TestCorruptStateFallsBackToDefaults(t *testing.T) {
	path := t.TempDir() + "/hydration.json"
	backend := NewJSONFile(path)
	if err := backend.Save([]byte("{not json")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := Open(backend, storeStart)
	if got := s.IntervalMinutes(); got != DefaultIntervalMinutes {
		t.Errorf("interval = %d after corrupt state, want %d", got, DefaultIntervalMinutes)
	}
	if got := len(s.Events()); got != 0 {
		t.Errorf("events = %d after corrupt state, want 0", got)
	}
}

func TestFullyInitialized(t *testing.T) {
	s := Open(nil, storeStart)

	s.SetCameraReady(true)
	s.SetFaceModelReady(true)
	s.SetObjectModelReady(true)

	// Notifications unsupported: the flag does not participate
	if !s.IsFullyInitialized() {
		t.Error("not initialized with notifications unsupported")
	}

	s.SetNotificationsSupported(true)
	if s.IsFullyInitialized() {
		t.Error("initialized despite missing notification permission")
	}

	s.SetNotificationsReady(true)
	if !s.IsFullyInitialized() {
		t.Error("not initialized with every flag set")
	}
}

func TestOnEventCallback(t *testing.T) {
	s := Open(nil, storeStart)

	var got []Event
	s.OnEvent = func(ev Event) { got = append(got, ev) }

	s.AddEvent("glass", storeStart.Add(time.Minute))

	if len(got) != 1 {
		t.Fatalf("callback fired %d times, want 1", len(got))
	}
	if got[0].Class != "glass" {
		t.Errorf("callback class = %q, want glass", got[0].Class)
	}
}
