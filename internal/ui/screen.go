package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"birdie/internal/mood"
	"birdie/internal/placement"
)

const (
	footerRows    = 2
	stackRows     = 10
	countdownRows = 4
	columnWidth   = 9
	digitWidth    = 4
	countdownCols = 3*columnWidth + 2

	labelGetPrompt = "[ Get Prompt ]"
	labelDone      = "[ Done for the day! ]"
	doneBadge      = "✔ done"
)

// Screen holds what the nudger last told us to draw and answers layout
// questions about the terminal. It implements nudge.Renderer and nudge.Geometry.
type Screen struct {
	width, height int

	hours, minutes, seconds int

	mood    mood.Mood
	asset   string
	caption string

	bird   placement.Rect
	placed bool

	streak int
	locked bool
	flying bool
	// celebration increments on every Celebrate so stale landing timers are ignored.
	celebration int
}

func NewScreen() *Screen {
	return &Screen{asset: fallbackSprite}
}

func (s *Screen) Countdown(hours, minutes, seconds int) {
	s.hours, s.minutes, s.seconds = hours, minutes, seconds
}

func (s *Screen) Mood(m mood.Mood, asset, caption string) {
	s.mood, s.asset, s.caption = m, asset, caption
}

func (s *Screen) Place(r placement.Rect) {
	s.bird, s.placed = r, true
}

func (s *Screen) Streak(n int)       { s.streak = n }
func (s *Screen) Locked(locked bool) { s.locked = locked }

func (s *Screen) Celebrate() {
	s.flying = true
	s.celebration++
}

func (s *Screen) land(celebration int) {
	if celebration == s.celebration {
		s.flying = false
	}
}

func (s *Screen) resize(w, h int) {
	s.width, s.height = w, h
}

// Viewport is the drawable area above the status and help rows.
func (s *Screen) Viewport() (int, int) {
	if s.width <= 0 || s.height <= footerRows {
		return 0, 0
	}
	return s.width, s.height - footerRows
}

func (s *Screen) FloatSize() (int, int) {
	return spriteWidth, spriteHeight
}

func (s *Screen) FixedRegions() []placement.Rect {
	l := s.layout()
	return []placement.Rect{l.streak, l.caption, l.countdown, l.control}
}

func (s *Screen) CountdownHeight() int { return countdownRows }

type layout struct {
	streak    placement.Rect
	caption   placement.Rect
	countdown placement.Rect
	control   placement.Rect
}

func (s *Screen) layout() layout {
	w, h := s.Viewport()
	top := max(0, (h-stackRows)/2)
	line := func(row int, text string) placement.Rect {
		tw := min(lipgloss.Width(text), w)
		return placement.At(max(0, (w-tw)/2), top+row, tw, 1)
	}
	return layout{
		streak:    line(0, s.streakText()),
		caption:   line(2, s.captionText(w)),
		countdown: placement.At(max(0, (w-countdownCols)/2), top+4, countdownCols, countdownRows),
		control:   line(9, s.controlText()),
	}
}

func (s *Screen) streakText() string {
	return fmt.Sprintf("Streak: %d", s.streak)
}

func (s *Screen) captionText(w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.Truncate(s.caption, w, "…")
}

func (s *Screen) controlText() string {
	if s.locked {
		return labelDone + "  " + doneBadge
	}
	return labelGetPrompt
}
