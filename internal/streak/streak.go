// Package streak owns the countdown deadline and the consecutive-day streak.
//
// The deadline is always a local midnight: the one following the last
// completion, or the first upcoming midnight before any completion. When the
// deadline passes, Tick rolls over to the next midnight and zeroes the streak
// if a whole calendar day went by without a completion.
package streak

import (
	"errors"
	"time"

	"birdie/internal/clock"
	"birdie/internal/logging"
	"birdie/internal/storage"
)

// ErrAlreadyCompleted is returned when a completion was already recorded today.
var ErrAlreadyCompleted = errors.New("already completed today")

// Saver persists the machine's fields. *storage.StateStore implements it.
type Saver interface {
	SaveTimeline(deadline time.Time, streak int, lastCompletionAt time.Time) error
}

// Remaining is the countdown derived on every tick.
type Remaining struct {
	Total    time.Duration
	Hours    int
	Minutes  int
	Seconds  int
	Progress float64
}

// NewRemaining splits d (clamped to [0, 24h]) into display units.
// Progress runs from 0 at the start of the cycle to 1 at the deadline.
func NewRemaining(d time.Duration) Remaining {
	if d < 0 {
		d = 0
	}
	if d > clock.Day {
		d = clock.Day
	}
	return Remaining{
		Total:    d,
		Hours:    int(d / time.Hour),
		Minutes:  int(d % time.Hour / time.Minute),
		Seconds:  int(d % time.Minute / time.Second),
		Progress: 1 - float64(d)/float64(clock.Day),
	}
}

type TickResult struct {
	Remaining  Remaining
	RolledOver bool
	// StreakReset is set when the rollover zeroed a non-zero streak.
	StreakReset bool
}

// Machine is the deadline/streak state machine. It is not safe for
// concurrent use; a single tick loop owns it.
type Machine struct {
	deadline         time.Time
	streak           int
	lastCompletionAt time.Time

	saver      Saver
	logger     *logging.Logger
	persistErr error
}

// New builds a machine from loaded state. saver and logger may be nil.
func New(st storage.State, saver Saver, logger *logging.Logger) *Machine {
	if logger == nil {
		logger = logging.Discard()
	}
	streak := st.Streak
	if streak < 0 {
		streak = 0
	}
	return &Machine{
		deadline:         st.Deadline,
		streak:           streak,
		lastCompletionAt: st.LastCompletionAt,
		saver:            saver,
		logger:           logger,
	}
}

func (m *Machine) Deadline() time.Time         { return m.deadline }
func (m *Machine) Streak() int                 { return m.streak }
func (m *Machine) LastCompletionAt() time.Time { return m.lastCompletionAt }

// PersistErr returns the most recent write failure, nil once a write succeeds.
func (m *Machine) PersistErr() error { return m.persistErr }

// EnsureDeadline initializes a missing deadline and corrects one that drifted
// away from the midnight following the last completion.
func (m *Machine) EnsureDeadline(now time.Time) {
	if m.deadline.IsZero() {
		m.deadline = clock.NextMidnight(now)
		m.logger.Infof("deadline initialized to %s", m.deadline.Format(time.RFC3339))
		m.persist()
		return
	}
	if m.lastCompletionAt.IsZero() {
		return
	}
	expected := clock.NextMidnight(m.lastCompletionAt.In(now.Location()))
	if !m.deadline.Equal(expected) {
		m.logger.Warnf("deadline %s drifted, correcting to %s",
			m.deadline.Format(time.RFC3339), expected.Format(time.RFC3339))
		m.deadline = expected
		m.persist()
	}
}

// CanCompleteNow is the completion gate: at most one completion per calendar day.
func (m *Machine) CanCompleteNow(now time.Time) bool {
	return !clock.IsSameDay(m.lastCompletionAt, now)
}

// CompletedToday reports whether a completion was recorded on now's calendar day.
func (m *Machine) CompletedToday(now time.Time) bool {
	return clock.IsSameDay(m.lastCompletionAt, now)
}

// RecordCompletion advances the streak and pins the deadline to tonight's midnight.
func (m *Machine) RecordCompletion(now time.Time) error {
	if !m.CanCompleteNow(now) {
		return ErrAlreadyCompleted
	}
	m.streak++
	m.lastCompletionAt = now
	m.deadline = clock.NextMidnight(now)
	m.logger.Infof("completion recorded, streak %d", m.streak)
	m.persist()
	return nil
}

// Remaining returns the time left until the deadline without rolling over.
func (m *Machine) Remaining(now time.Time) Remaining {
	return NewRemaining(m.deadline.Sub(now))
}

// Tick computes the remaining time and performs the midnight rollover once
// the deadline has passed.
func (m *Machine) Tick(now time.Time) TickResult {
	if m.deadline.IsZero() {
		m.EnsureDeadline(now)
	}
	left := m.deadline.Sub(now)
	if left > 0 {
		return TickResult{Remaining: NewRemaining(left)}
	}

	res := TickResult{Remaining: NewRemaining(0), RolledOver: true}
	yesterdayStart := clock.PreviousDayStart(now)
	if m.lastCompletionAt.IsZero() || m.lastCompletionAt.Before(yesterdayStart) {
		if m.streak > 0 {
			res.StreakReset = true
			m.logger.Infof("missed a day, streak %d reset", m.streak)
		}
		m.streak = 0
	}
	m.deadline = clock.NextMidnight(now)
	m.logger.Debugf("rolled over, next deadline %s", m.deadline.Format(time.RFC3339))
	m.persist()
	return res
}

func (m *Machine) persist() {
	if m.saver == nil {
		return
	}
	if err := m.saver.SaveTimeline(m.deadline, m.streak, m.lastCompletionAt); err != nil {
		m.persistErr = err
		m.logger.Warnf("persist streak state: %v", err)
		return
	}
	m.persistErr = nil
}
