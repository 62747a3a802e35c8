package placement

import "math"

// Rect is an axis-aligned rectangle in terminal cells. Right and Bottom are exclusive.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// At builds a rect of size w×h with its top-left corner at (left, top).
func At(left, top, w, h int) Rect {
	return Rect{Left: left, Top: top, Right: left + w, Bottom: top + h}
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Overlaps reports whether a and b share area. Rects that only touch along an
// edge do not overlap.
func Overlaps(a, b Rect) bool {
	return a.Left < b.Right && b.Left < a.Right && a.Top < b.Bottom && b.Top < a.Bottom
}

// Union returns the smallest rect covering both a and b.
func Union(a, b Rect) Rect {
	return Rect{
		Left:   min(a.Left, b.Left),
		Top:    min(a.Top, b.Top),
		Right:  max(a.Right, b.Right),
		Bottom: max(a.Bottom, b.Bottom),
	}
}

// Expand grows r by margin on every side.
func Expand(r Rect, margin int) Rect {
	return Rect{Left: r.Left - margin, Top: r.Top - margin, Right: r.Right + margin, Bottom: r.Bottom + margin}
}

// Exclusion unions the fixed UI regions and pads the result with halo.
// Empty regions are skipped; ok is false when nothing remains.
func Exclusion(regions []Rect, halo int) (Rect, bool) {
	var zone Rect
	found := false
	for _, r := range regions {
		if r.Empty() {
			continue
		}
		if !found {
			zone, found = r, true
			continue
		}
		zone = Union(zone, r)
	}
	if !found {
		return Rect{}, false
	}
	return Expand(zone, halo), true
}

// Halo computes the exclusion margin: base plus a share of the countdown's
// height, never less than minExtra.
func Halo(base, minExtra int, scale float64, countdownHeight int) int {
	return base + max(minExtra, int(math.Round(float64(countdownHeight)*scale)))
}
