package drinking

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of the drinking state machine.
type SessionState int

const (
	// StateIdle means no overlap is being observed or accumulated.
	StateIdle SessionState = iota
	// StateAccumulating means overlap has been seen but not yet confirmed.
	StateAccumulating
	// StateActive means a drinking session is confirmed in progress.
	StateActive
)

// String returns the state name for logging.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// SessionConfig holds the hysteresis parameters for the state machine.
type SessionConfig struct {
	// MinConfirmFrames is how many consecutive overlap samples confirm a
	// session start. Filters out single-frame flicker.
	MinConfirmFrames int

	// StopDebounce is how long overlap may be absent before an active
	// session ends. Tolerates momentary occlusion and detector dropout.
	StopDebounce time.Duration

	// MinSipDuration is the shortest session that counts as a real sip.
	// Anything shorter is a hand passing a cup near the face, not drinking.
	MinSipDuration time.Duration
}

// DefaultSessionConfig returns the recommended hysteresis parameters.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MinConfirmFrames: 3,
		StopDebounce:     500 * time.Millisecond,
		MinSipDuration:   2 * time.Second,
	}
}

// Event is a completed drinking session that qualified as a real sip.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Class     string        `json:"class"` // Vessel class that was overlapping
	StartedAt time.Time     `json:"started_at"`
	StoppedAt time.Time     `json:"stopped_at"`
	Duration  time.Duration `json:"duration"`
}

// Result describes what a single observed sample did to the session.
type Result struct {
	// Started is true when this sample confirmed a new active session.
	Started bool

	// Stopped is true when this sample ended an active session,
	// whether or not the session qualified as a sip.
	Stopped bool

	// Event is non-nil only when the ended session met MinSipDuration.
	Event *Event
}

// Session converts a noisy sequence of per-frame overlap booleans into
// exactly one confirmed start and one confirmed stop per drinking session.
//
// The stop side is evaluated lazily against wall-clock time on each new
// sample rather than with an armed timer, so behavior is deterministic
// under irregular frame arrival. Not safe for concurrent use; the monitor
// serializes all observations.
type Session struct {
	cfg SessionConfig

	state       SessionState
	id          uuid.UUID
	consecutive int
	class       string
	startedAt   time.Time
	lastOverlap time.Time
}

// NewSession creates a session state machine in the idle state.
func NewSession(cfg SessionConfig) *Session {
	if cfg.MinConfirmFrames < 1 {
		cfg.MinConfirmFrames = 1
	}
	return &Session{cfg: cfg}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// Active reports whether a drinking session is confirmed in progress.
func (s *Session) Active() bool {
	return s.state == StateActive
}

// StartedAt returns when the current active session was confirmed.
// Zero when no session is active.
func (s *Session) StartedAt() time.Time {
	if s.state != StateActive {
		return time.Time{}
	}
	return s.startedAt
}

// Observe feeds one classified frame into the state machine.
// class is the vessel class that was overlapping (ignored when
// overlapping is false).
func (s *Session) Observe(overlapping bool, class string, now time.Time) Result {
	switch s.state {
	case StateIdle, StateAccumulating:
		if !overlapping {
			s.reset()
			return Result{}
		}

		s.state = StateAccumulating
		s.consecutive++
		s.class = class
		s.lastOverlap = now

		if s.consecutive < s.cfg.MinConfirmFrames {
			return Result{}
		}

		s.state = StateActive
		s.id = uuid.New()
		s.startedAt = now
		return Result{Started: true}

	case StateActive:
		if overlapping {
			s.lastOverlap = now
			if class != "" {
				s.class = class
			}
			return Result{}
		}

		if now.Sub(s.lastOverlap) <= s.cfg.StopDebounce {
			// Within the debounce window; the session survives
			return Result{}
		}

		res := Result{Stopped: true}
		duration := now.Sub(s.startedAt)
		if duration >= s.cfg.MinSipDuration {
			res.Event = &Event{
				ID:        s.id,
				Class:     s.class,
				StartedAt: s.startedAt,
				StoppedAt: now,
				Duration:  duration,
			}
		}
		s.reset()
		return res
	}

	return Result{}
}

// Reset abandons any in-flight session without emitting anything.
func (s *Session) Reset() {
	s.reset()
}

func (s *Session) reset() {
	s.state = StateIdle
	s.id = uuid.Nil
	s.consecutive = 0
	s.class = ""
	s.startedAt = time.Time{}
	s.lastOverlap = time.Time{}
}
