package hydration

import (
	"context"
	"fmt"
	"time"

	"github.com/sipsense/go-sipsense/internal/log"
)

// Notifier delivers a reminder to the user. The D-Bus desktop
// implementation lives in pkg/notify; tests substitute a fake.
type Notifier interface {
	Notify(title, body string, sound bool) error
}

// ReminderConfig holds the reminder loop parameters.
type ReminderConfig struct {
	// CheckInterval is how often overdue status is polled.
	CheckInterval time.Duration

	// MinGap is the minimum spacing between delivered notifications,
	// independent of overdue periods.
	MinGap time.Duration
}

// DefaultReminderConfig returns the recommended reminder parameters.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		CheckInterval: 30 * time.Second,
		MinGap:        5 * time.Minute,
	}
}

// Reminder watches the store and notifies the user when they are overdue.
// It fires at most once per overdue period and re-arms only once the user
// is no longer overdue (they drank, or the interval changed).
type Reminder struct {
	cfg      ReminderConfig
	store    *Store
	notifier Notifier

	// now is the clock; tests substitute a fake.
	now func() time.Time

	notifiedThisPeriod bool
	lastNotifiedAt     time.Time
}

// NewReminder creates a reminder over the given store and notifier.
func NewReminder(cfg ReminderConfig, store *Store, notifier Notifier) *Reminder {
	return &Reminder{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// Run polls until ctx is done. The first check happens immediately.
func (r *Reminder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.CheckInterval)
	defer ticker.Stop()

	r.Check(r.now())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Check(r.now())
		}
	}
}

// Check runs one reminder evaluation at the given time.
func (r *Reminder) Check(now time.Time) {
	if !r.store.IsOverdue(now) {
		// Re-arm once the user is back under the interval
		r.notifiedThisPeriod = false
		return
	}

	if r.notifiedThisPeriod {
		return
	}
	if !r.lastNotifiedAt.IsZero() && now.Sub(r.lastNotifiedAt) < r.cfg.MinGap {
		return
	}

	elapsed, ok := r.store.TimeSinceLastHydration(now)
	if !ok {
		return
	}

	minutes := int(elapsed.Minutes())
	body := fmt.Sprintf("It's been %d minutes since your last drink. Stay hydrated!", minutes)
	if err := r.notifier.Notify("💧 Time to Hydrate!", body, r.store.SoundEnabled()); err != nil {
		log.Warn("reminder notification failed", "error", err)
		return
	}

	r.notifiedThisPeriod = true
	r.lastNotifiedAt = now
	log.Info("hydration reminder sent", "overdue_minutes", minutes)
}

// SetClock substitutes the reminder's clock, for tests.
func (r *Reminder) SetClock(now func() time.Time) {
	r.now = now
}
