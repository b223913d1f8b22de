package hydration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sipsense/go-sipsense/internal/log"
)

// Backend is the interface for hydration state persistence.
// Implementations can store to JSON files, SQLite, etc.
type Backend interface {
	// Save persists the given data.
	Save(data []byte) error

	// Load retrieves the stored data.
	Load() ([]byte, error)

	// Close releases any resources held by the backend.
	Close() error
}

// JSONFile implements Backend for file-based JSON persistence.
type JSONFile struct {
	FilePath string
}

// NewJSONFile creates a new JSON file backend.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{FilePath: path}
}

// Save writes data to the JSON file.
func (f *JSONFile) Save(data []byte) error {
	if f.FilePath == "" {
		return nil
	}

	dir := filepath.Dir(f.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	if err := os.WriteFile(f.FilePath, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// Load reads data from the JSON file.
func (f *JSONFile) Load() ([]byte, error) {
	if f.FilePath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(f.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Nothing persisted yet, that's OK
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// Close is a no-op for JSON files.
func (f *JSONFile) Close() error {
	return nil
}

// Ensure JSONFile implements Backend
var _ Backend = (*JSONFile)(nil)

// persistedState is the durable subset of store state. lastEventAt and
// trackingStartedAt are deliberately absent: both describe the current
// session and are recomputed at startup.
type persistedState struct {
	IntervalMinutes int              `json:"intervalMinutes"`
	Events          []persistedEvent `json:"events"`
	FirstEventOfDay *string          `json:"firstEventOfDayAt"`
	SoundEnabled    bool             `json:"soundEnabled"`
}

type persistedEvent struct {
	Timestamp   string `json:"timestamp"` // ISO-8601
	ObjectClass string `json:"objectClass"`
}

// firstEventOfDay parses the persisted day marker, reporting false when
// absent or unparsable.
func (p *persistedState) firstEventOfDay() (time.Time, bool) {
	if p.FirstEventOfDay == nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, *p.FirstEventOfDay)
	if err != nil {
		log.Warn("discarding unparsable day marker", "value", *p.FirstEventOfDay)
		return time.Time{}, false
	}
	return ts.Local(), true
}

// restoredEvents converts persisted events back to the in-memory form,
// dropping any with unparsable timestamps.
func (p *persistedState) restoredEvents() []Event {
	var events []Event
	for _, pe := range p.Events {
		ts, err := time.Parse(time.RFC3339, pe.Timestamp)
		if err != nil {
			log.Warn("dropping event with unparsable timestamp", "value", pe.Timestamp)
			continue
		}
		// IDs are session-local and not persisted; restored events get
		// fresh ones.
		events = append(events, Event{
			ID:        uuid.New(),
			Timestamp: ts.Local(),
			Class:     pe.ObjectClass,
		})
	}
	return events
}

// snapshotLocked builds the persisted subset. Callers hold s.mu.
func (s *Store) snapshotLocked() persistedState {
	p := persistedState{
		IntervalMinutes: s.intervalMinutes,
		SoundEnabled:    s.soundEnabled,
		Events:          make([]persistedEvent, 0, len(s.events)),
	}

	for _, ev := range s.events {
		p.Events = append(p.Events, persistedEvent{
			Timestamp:   ev.Timestamp.Format(time.RFC3339),
			ObjectClass: ev.Class,
		})
	}

	if !s.firstEventOfDay.IsZero() {
		marker := s.firstEventOfDay.Format(time.RFC3339)
		p.FirstEventOfDay = &marker
	}

	return p
}

func save(backend Backend, state persistedState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return backend.Save(data)
}

func load(backend Backend) (*persistedState, error) {
	data, err := backend.Load()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse persisted state: %w", err)
	}
	return &state, nil
}
