// Package scheduler provides the single repeating tick task with
// cancel/restart semantics, for the bubbletea loop and for headless runs.
package scheduler

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is delivered to the bubbletea program on each tick.
type TickMsg struct {
	Tag  int
	Time time.Time
}

// Ticker drives periodic ticks through bubbletea. Each Start bumps the tag so
// a tick scheduled by an earlier run is dropped by Accept; the next tick is
// only armed by Next, after the handler has run.
type Ticker struct {
	interval time.Duration
	tag      int
	running  bool
}

func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{interval: interval}
}

func (t *Ticker) Interval() time.Duration { return t.interval }

// Start cancels any previous run and schedules the first tick.
func (t *Ticker) Start() tea.Cmd {
	t.tag++
	t.running = true
	return t.schedule()
}

// SetInterval changes the period. A running ticker restarts so the new
// period applies right away.
func (t *Ticker) SetInterval(d time.Duration) tea.Cmd {
	if d <= 0 || d == t.interval {
		return nil
	}
	t.interval = d
	if !t.running {
		return nil
	}
	return t.Start()
}

// Stop cancels the current run.
func (t *Ticker) Stop() {
	t.tag++
	t.running = false
}

// Accept reports whether msg belongs to the current run.
func (t *Ticker) Accept(msg TickMsg) bool {
	return t.running && msg.Tag == t.tag
}

// Next arms the following tick of the current run.
func (t *Ticker) Next() tea.Cmd {
	if !t.running {
		return nil
	}
	return t.schedule()
}

func (t *Ticker) schedule() tea.Cmd {
	tag := t.tag
	return tea.Tick(t.interval, func(now time.Time) tea.Msg {
		return TickMsg{Tag: tag, Time: now}
	})
}

// Repeater runs a function on a fixed interval in its own goroutine.
// Restart cancels the previous run and waits for it before starting anew,
// so two runs never execute concurrently.
type Repeater struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRepeater(interval time.Duration) *Repeater {
	if interval <= 0 {
		interval = time.Second
	}
	return &Repeater{interval: interval}
}

// Restart stops any running loop and starts fn: once immediately, then every
// interval until ctx is done or Stop is called.
func (r *Repeater) Restart(ctx context.Context, fn func(time.Time)) {
	r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	go func() {
		defer close(done)
		run(runCtx, r.interval, fn)
	}()
}

// Stop cancels the running loop and waits for it to exit.
func (r *Repeater) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the current loop exits.
func (r *Repeater) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Run calls fn immediately and then on every interval until ctx is done.
// It blocks in the caller's goroutine.
func Run(ctx context.Context, interval time.Duration, fn func(time.Time)) {
	if interval <= 0 {
		interval = time.Second
	}
	run(ctx, interval, fn)
}

func run(ctx context.Context, interval time.Duration, fn func(time.Time)) {
	if ctx.Err() != nil {
		return
	}
	fn(time.Now())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			fn(now)
		}
	}
}
