package streak

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"birdie/internal/clock"
	"birdie/internal/storage"
)

// 2024-03-04 is a Monday.
var monday = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func at(day int, hour, minute int) time.Time {
	return monday.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type recordingSaver struct {
	saves    int
	deadline time.Time
	streak   int
	last     time.Time
	err      error
}

func (r *recordingSaver) SaveTimeline(deadline time.Time, streak int, last time.Time) error {
	r.saves++
	if r.err != nil {
		return r.err
	}
	r.deadline, r.streak, r.last = deadline, streak, last
	return nil
}

func TestFirstLoadCompleteAndRollover(t *testing.T) {
	saver := &recordingSaver{}
	m := New(storage.State{}, saver, nil)
	t0 := at(0, 10, 0)

	m.EnsureDeadline(t0)
	if want := at(1, 0, 0); !m.Deadline().Equal(want) {
		t.Fatalf("deadline = %v, want %v", m.Deadline(), want)
	}
	if m.Streak() != 0 {
		t.Fatalf("expected streak 0, got %d", m.Streak())
	}
	if saver.saves != 1 {
		t.Fatalf("expected deadline init to persist, saves=%d", saver.saves)
	}

	if err := m.RecordCompletion(t0); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if m.Streak() != 1 || !m.LastCompletionAt().Equal(t0) {
		t.Fatalf("unexpected state after completion: streak=%d last=%v", m.Streak(), m.LastCompletionAt())
	}
	if want := at(1, 0, 0); !m.Deadline().Equal(want) {
		t.Fatalf("deadline after completion = %v, want %v", m.Deadline(), want)
	}
	if saver.streak != 1 || !saver.last.Equal(t0) {
		t.Fatalf("completion not persisted: %+v", saver)
	}

	if m.CanCompleteNow(at(0, 23, 0)) {
		t.Fatalf("expected completion gate closed later on Monday")
	}
	if err := m.RecordCompletion(at(0, 23, 0)); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}

	res := m.Tick(at(1, 0, 1))
	if !res.RolledOver {
		t.Fatalf("expected rollover at Tuesday 00:01")
	}
	if res.Remaining.Total != 0 {
		t.Fatalf("expected zero remaining on rollover, got %v", res.Remaining.Total)
	}
	if m.Streak() != 1 || res.StreakReset {
		t.Fatalf("streak should survive a completion yesterday, got %d", m.Streak())
	}
	if want := at(2, 0, 0); !m.Deadline().Equal(want) {
		t.Fatalf("deadline after rollover = %v, want %v", m.Deadline(), want)
	}
	if !m.CanCompleteNow(at(1, 0, 1)) {
		t.Fatalf("expected completion gate open on Tuesday")
	}
}

func TestMissedDaysResetStreak(t *testing.T) {
	m := New(storage.State{}, nil, nil)
	m.EnsureDeadline(at(0, 9, 0))
	if err := m.RecordCompletion(at(0, 9, 0)); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	res := m.Tick(at(3, 9, 0))
	if !res.RolledOver || !res.StreakReset {
		t.Fatalf("expected rollover with reset, got %+v", res)
	}
	if m.Streak() != 0 {
		t.Fatalf("expected streak reset to 0, got %d", m.Streak())
	}
	if want := at(4, 0, 0); !m.Deadline().Equal(want) {
		t.Fatalf("deadline = %v, want %v", m.Deadline(), want)
	}
}

func TestCompletionSecondsBeforeMidnightKeepsStreak(t *testing.T) {
	m := New(storage.State{Streak: 4}, nil, nil)
	late := at(0, 23, 59).Add(59 * time.Second)
	m.EnsureDeadline(late)
	if err := m.RecordCompletion(late); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	// Returning late on Tuesday: Monday is "yesterday", so the streak holds.
	res := m.Tick(at(1, 22, 0))
	if !res.RolledOver || m.Streak() != 5 {
		t.Fatalf("expected streak 5 to survive, got %d (%+v)", m.Streak(), res)
	}
	// No completion on Tuesday: Wednesday's rollover resets.
	if res := m.Tick(at(2, 0, 0)); !res.StreakReset || m.Streak() != 0 {
		t.Fatalf("expected reset after missing Tuesday, got %d (%+v)", m.Streak(), res)
	}
}

func TestRolloverWithoutAnyCompletionResets(t *testing.T) {
	m := New(storage.State{Streak: 2, Deadline: at(0, 0, 0)}, nil, nil)
	res := m.Tick(at(0, 8, 0))
	if !res.RolledOver || m.Streak() != 0 {
		t.Fatalf("expected reset without completions, got streak %d", m.Streak())
	}
}

func TestRolloverIsIdempotent(t *testing.T) {
	saver := &recordingSaver{}
	m := New(storage.State{Deadline: at(1, 0, 0), Streak: 1, LastCompletionAt: at(0, 10, 0)}, saver, nil)
	now := at(1, 0, 5)
	if res := m.Tick(now); !res.RolledOver {
		t.Fatalf("expected first tick to roll over")
	}
	saves := saver.saves
	for i := 0; i < 5; i++ {
		res := m.Tick(now)
		if res.RolledOver {
			t.Fatalf("tick %d rolled over again", i)
		}
		if res.Remaining.Total <= 0 {
			t.Fatalf("expected positive remaining after rollover")
		}
	}
	if saver.saves != saves {
		t.Fatalf("non-rollover ticks must not persist, saves %d -> %d", saves, saver.saves)
	}
}

func TestEnsureDeadlineCorrectsDrift(t *testing.T) {
	saver := &recordingSaver{}
	m := New(storage.State{Deadline: at(5, 0, 0), LastCompletionAt: at(0, 10, 0), Streak: 1}, saver, nil)
	m.EnsureDeadline(at(0, 11, 0))
	if want := at(1, 0, 0); !m.Deadline().Equal(want) {
		t.Fatalf("deadline = %v, want %v", m.Deadline(), want)
	}
	if saver.saves != 1 {
		t.Fatalf("expected correction to persist once, got %d", saver.saves)
	}
	m.EnsureDeadline(at(0, 12, 0))
	if saver.saves != 1 {
		t.Fatalf("expected no write when deadline already matches")
	}
}

func TestEnsureDeadlineKeepsDeadlineBeforeCompletion(t *testing.T) {
	saver := &recordingSaver{}
	m := New(storage.State{Deadline: at(1, 0, 0)}, saver, nil)
	m.EnsureDeadline(at(0, 11, 0))
	if !m.Deadline().Equal(at(1, 0, 0)) || saver.saves != 0 {
		t.Fatalf("deadline should be untouched, got %v saves=%d", m.Deadline(), saver.saves)
	}
}

func TestPersistFailureIsNotFatal(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	m := New(storage.State{}, saver, nil)
	m.EnsureDeadline(at(0, 10, 0))
	if err := m.RecordCompletion(at(0, 10, 0)); err != nil {
		t.Fatalf("write failure must not fail the completion: %v", err)
	}
	if m.Streak() != 1 {
		t.Fatalf("in-memory state must advance, got %d", m.Streak())
	}
	if m.PersistErr() == nil {
		t.Fatalf("expected persist error to be recorded")
	}
	saver.err = nil
	m.Tick(at(1, 0, 1))
	if m.PersistErr() != nil {
		t.Fatalf("expected persist error cleared after successful write")
	}
}

func TestRemainingSplit(t *testing.T) {
	r := NewRemaining(5*time.Hour + 7*time.Minute + 9*time.Second + 500*time.Millisecond)
	if r.Hours != 5 || r.Minutes != 7 || r.Seconds != 9 {
		t.Fatalf("unexpected split %+v", r)
	}
	if full := NewRemaining(clock.Day); full.Progress != 0 {
		t.Fatalf("expected progress 0 at full day, got %v", full.Progress)
	}
	if none := NewRemaining(-time.Second); none.Progress != 1 || none.Total != 0 {
		t.Fatalf("expected clamped remaining, got %+v", none)
	}
}

func TestStreakChangesOnlyByCompletionOrReset(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	m := New(storage.State{}, nil, nil)
	now := at(0, 6, 0)
	m.EnsureDeadline(now)
	for i := 0; i < 2000; i++ {
		now = now.Add(time.Duration(rng.IntN(14*60)) * time.Minute)
		before := m.Streak()
		if rng.IntN(3) == 0 {
			err := m.RecordCompletion(now)
			switch {
			case err == nil && m.Streak() != before+1:
				t.Fatalf("completion changed streak %d -> %d", before, m.Streak())
			case err != nil && m.Streak() != before:
				t.Fatalf("rejected completion changed streak %d -> %d", before, m.Streak())
			}
			continue
		}
		res := m.Tick(now)
		switch {
		case !res.RolledOver && m.Streak() != before:
			t.Fatalf("plain tick changed streak %d -> %d", before, m.Streak())
		case res.RolledOver && m.Streak() != before && m.Streak() != 0:
			t.Fatalf("rollover changed streak to %d", m.Streak())
		}
		if !m.Deadline().After(now) {
			t.Fatalf("deadline %v not after %v", m.Deadline(), now)
		}
	}
}
