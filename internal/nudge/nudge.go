// Package nudge wires the streak machine, mood engine, placement engine and
// prompt rotation into the per-tick control flow. Rendering and geometry are
// supplied by collaborators so the flow runs without a display.
package nudge

import (
	"time"

	"birdie/internal/logging"
	"birdie/internal/mood"
	"birdie/internal/placement"
	"birdie/internal/prompts"
	"birdie/internal/streak"
)

// Renderer receives display updates.
type Renderer interface {
	Countdown(hours, minutes, seconds int)
	Mood(m mood.Mood, asset, caption string)
	Place(r placement.Rect)
	Streak(n int)
	// Locked toggles the "done for the day" state of the primary control.
	Locked(locked bool)
	Celebrate()
}

// Geometry reports the current layout. A zero viewport means it has not been
// measured yet and placement is skipped.
type Geometry interface {
	Viewport() (w, h int)
	FloatSize() (w, h int)
	FixedRegions() []placement.Rect
	CountdownHeight() int
}

// Rand is the shared random source for captions, prompts and placement.
type Rand interface {
	IntN(n int) int
}

type Options struct {
	Padding       int
	HaloBase      int
	HaloMin       int
	HaloScale     float64
	Assets        map[mood.Mood]string
	FallbackAsset string
	// AssetExists reports whether a sprite can be displayed; nil trusts Assets.
	AssetExists func(string) bool
}

// Frame summarizes one tick.
type Frame struct {
	Remaining      streak.Remaining
	RolledOver     bool
	StreakReset    bool
	CompletedToday bool
	Mood           mood.Mood
	Caption        string
	Repositioned   bool
}

type Nudger struct {
	machine  *streak.Machine
	moods    *mood.Engine
	rotation *prompts.Rotation
	render   Renderer
	geom     Geometry
	rng      Rand
	opts     Options
	logger   *logging.Logger

	locked    bool
	hasLocked bool
	placed    placement.Rect
}

// New assembles a Nudger. Nil collaborators become no-ops.
func New(machine *streak.Machine, moods *mood.Engine, rotation *prompts.Rotation, rng Rand, opts Options, render Renderer, geom Geometry, logger *logging.Logger) *Nudger {
	if render == nil {
		render = nopRenderer{}
	}
	if geom == nil {
		geom = nopGeometry{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Nudger{
		machine:  machine,
		moods:    moods,
		rotation: rotation,
		render:   render,
		geom:     geom,
		rng:      rng,
		opts:     opts,
		logger:   logger,
	}
}

func (n *Nudger) Machine() *streak.Machine { return n.machine }

// Placement returns the last computed rect for the floating element.
func (n *Nudger) Placement() placement.Rect { return n.placed }

// Start pins the deadline, paints the streak and runs the first tick.
func (n *Nudger) Start(now time.Time) Frame {
	n.machine.EnsureDeadline(now)
	n.render.Streak(n.machine.Streak())
	return n.Tick(now)
}

// Tick runs one pass: remaining time, rollover, mood, then a reposition if
// the mood changed. Periodic ticks and resume-from-background ticks share it.
func (n *Nudger) Tick(now time.Time) Frame {
	res := n.machine.Tick(now)
	f := Frame{Remaining: res.Remaining, RolledOver: res.RolledOver, StreakReset: res.StreakReset}

	if res.RolledOver {
		n.render.Streak(n.machine.Streak())
		n.moods.Reset()
		f.Remaining = n.machine.Remaining(now)
	}

	f.CompletedToday = n.machine.CompletedToday(now)
	n.setLocked(f.CompletedToday)

	m := mood.Derive(f.Remaining.Total, f.Remaining.Progress, f.CompletedToday)
	f.Mood = m
	f.Caption, f.Repositioned = n.applyMood(m, false)

	n.render.Countdown(f.Remaining.Hours, f.Remaining.Minutes, f.Remaining.Seconds)
	return f
}

// Complete records today's completion, forces the happy mood with a fresh
// caption and locks further completions until rollover.
func (n *Nudger) Complete(now time.Time) error {
	// Settle any pending rollover first so a stale deadline cannot carry a broken streak.
	n.Tick(now)
	if err := n.machine.RecordCompletion(now); err != nil {
		return err
	}
	n.render.Streak(n.machine.Streak())
	n.applyMood(mood.Happy, true)
	n.setLocked(true)
	n.render.Celebrate()
	return nil
}

// NextPrompt returns the next journaling prompt.
func (n *Nudger) NextPrompt() string {
	if n.rotation == nil {
		return ""
	}
	return n.rotation.Next()
}

// Reload swaps caption lists and prompts, e.g. after a config change.
func (n *Nudger) Reload(captions map[mood.Mood][]string, list []string, opts Options) {
	n.moods.SetCaptions(captions)
	if n.rotation != nil {
		n.rotation.SetPrompts(list)
	}
	n.opts = opts
}

// Reposition computes a fresh spot for the floating element against the
// current layout and hands it to the renderer.
func (n *Nudger) Reposition() (placement.Rect, bool) {
	vw, vh := n.geom.Viewport()
	if vw <= 0 || vh <= 0 {
		return placement.Rect{}, false
	}
	ew, eh := n.geom.FloatSize()
	halo := placement.Halo(n.opts.HaloBase, n.opts.HaloMin, n.opts.HaloScale, n.geom.CountdownHeight())
	zone, ok := placement.Exclusion(n.geom.FixedRegions(), halo)
	r := placement.Compute(placement.Params{
		ViewportW:    vw,
		ViewportH:    vh,
		ElementW:     ew,
		ElementH:     eh,
		Padding:      n.opts.Padding,
		Exclusion:    zone,
		HasExclusion: ok,
	}, n.rng)
	n.placed = r
	n.render.Place(r)
	n.logger.Debugf("placed bird at %d,%d (%dx%d)", r.Left, r.Top, r.Width(), r.Height())
	return r, true
}

func (n *Nudger) applyMood(m mood.Mood, force bool) (string, bool) {
	ch := n.moods.Apply(m, force)
	if ch.Refreshed {
		asset := mood.ResolveAsset(m, n.opts.Assets, n.opts.FallbackAsset, n.opts.AssetExists)
		n.render.Mood(m, asset, ch.Caption)
	}
	moved := false
	if ch.Reposition {
		_, moved = n.Reposition()
	}
	return ch.Caption, moved
}

func (n *Nudger) setLocked(locked bool) {
	if n.hasLocked && n.locked == locked {
		return
	}
	n.locked, n.hasLocked = locked, true
	n.render.Locked(locked)
}

type nopRenderer struct{}

func (nopRenderer) Countdown(int, int, int)        {}
func (nopRenderer) Mood(mood.Mood, string, string) {}
func (nopRenderer) Place(placement.Rect)           {}
func (nopRenderer) Streak(int)                     {}
func (nopRenderer) Locked(bool)                    {}
func (nopRenderer) Celebrate()                     {}

type nopGeometry struct{}

func (nopGeometry) Viewport() (int, int)           { return 0, 0 }
func (nopGeometry) FloatSize() (int, int)          { return 0, 0 }
func (nopGeometry) FixedRegions() []placement.Rect { return nil }
func (nopGeometry) CountdownHeight() int           { return 0 }
