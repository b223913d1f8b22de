package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sipsense/go-sipsense/pkg/hydration"
)

func newTestServer(t *testing.T) (*Server, *hydration.Store) {
	t.Helper()
	store := hydration.Open(nil, time.Now().Add(-10*time.Minute))
	return NewServer("0", store), store
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	store.AddEvent("cup", time.Now().Add(-time.Minute))

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/status", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var status Status
	decodeBody(t, resp, &status)
	if status.TodayCount != 1 {
		t.Errorf("today_count = %d, want 1", status.TodayCount)
	}
	if status.IntervalMinutes != hydration.DefaultIntervalMinutes {
		t.Errorf("interval = %d, want default", status.IntervalMinutes)
	}
	if status.Overdue {
		t.Error("overdue right after an event")
	}
}

func TestEventsEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	store.AddEvent("cup", time.Now().Add(-2*time.Minute))
	store.AddEvent("bottle", time.Now().Add(-time.Minute))

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/events", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	var events []hydration.Event
	decodeBody(t, resp, &events)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Class != "cup" || events[1].Class != "bottle" {
		t.Errorf("classes = %q, %q", events[0].Class, events[1].Class)
	}
}

func TestUpdateConfig(t *testing.T) {
	s, store := newTestServer(t)

	req := httptest.NewRequest("PUT", "/api/config",
		strings.NewReader(`{"interval_minutes": 45, "sound_enabled": true}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	if got := store.IntervalMinutes(); got != 45 {
		t.Errorf("interval = %d, want 45", got)
	}
	if !store.SoundEnabled() {
		t.Error("sound not enabled")
	}
}

func TestUpdateConfigRejectsBadInterval(t *testing.T) {
	s, store := newTestServer(t)

	req := httptest.NewRequest("PUT", "/api/config",
		strings.NewReader(`{"interval_minutes": 0}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := store.IntervalMinutes(); got != hydration.DefaultIntervalMinutes {
		t.Errorf("interval changed to %d", got)
	}
}

func TestResetEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	store.AddEvent("glass", time.Now())

	resp, err := s.app.Test(httptest.NewRequest("POST", "/api/reset", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if got := len(store.Events()); got != 0 {
		t.Errorf("events = %d after reset, want 0", got)
	}
}

func TestDashboardIndexServed(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "SipSense") {
		t.Error("dashboard page missing from response")
	}
}

func TestResetNotifiesPipeline(t *testing.T) {
	s, _ := newTestServer(t)

	var resets int
	s.OnReset = func() { resets++ }

	resp, err := s.app.Test(httptest.NewRequest("POST", "/api/reset", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	if resets != 1 {
		t.Fatalf("reset hook fired %d times, want 1", resets)
	}
}
