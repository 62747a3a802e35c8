package placement

// Rand is the random source used for candidate positions.
type Rand interface {
	IntN(n int) int
}

// Attempts is how many random candidates are tried before the fallback.
const Attempts = 60

// Params describes one placement request.
type Params struct {
	ViewportW int
	ViewportH int
	ElementW  int
	ElementH  int
	Padding   int
	// Exclusion is the zone to avoid; ignored unless HasExclusion is set.
	Exclusion    Rect
	HasExclusion bool
}

// Bounds returns the inclusive ranges for the element's top-left corner.
func (p Params) Bounds() (minLeft, maxLeft, minTop, maxTop int) {
	minLeft, minTop = p.Padding, p.Padding
	maxLeft = max(minLeft, p.ViewportW-p.ElementW-p.Padding)
	maxTop = max(minTop, p.ViewportH-p.ElementH-p.Padding)
	return minLeft, maxLeft, minTop, maxTop
}

// Compute picks a spot for the floating element. Random candidates are tried
// first; if all of them hit the exclusion zone, the element goes to the roomier
// side above/below and then left/right of the zone.
func Compute(p Params, rng Rand) Rect {
	minLeft, maxLeft, minTop, maxTop := p.Bounds()
	if !p.HasExclusion {
		return At(randInt(rng, minLeft, maxLeft), randInt(rng, minTop, maxTop), p.ElementW, p.ElementH)
	}
	for i := 0; i < Attempts; i++ {
		candidate := At(randInt(rng, minLeft, maxLeft), randInt(rng, minTop, maxTop), p.ElementW, p.ElementH)
		if !Overlaps(candidate, p.Exclusion) {
			return candidate
		}
	}
	return fallback(p, rng)
}

func fallback(p Params, rng Rand) Rect {
	pad, w, h := p.Padding, p.ElementW, p.ElementH
	c := p.Exclusion

	spaceAbove := max(0, c.Top-pad-h)
	spaceBelow := max(0, p.ViewportH-(c.Bottom+pad)-h)
	var top int
	if spaceAbove >= spaceBelow {
		top = max(pad, c.Top-h-pad)
	} else {
		top = min(p.ViewportH-h-pad, c.Bottom+pad)
	}

	// A row fully above or below the zone can use the whole width.
	if top+h <= c.Top || top >= c.Bottom {
		minLeft, maxLeft, _, _ := p.Bounds()
		return At(randInt(rng, minLeft, maxLeft), top, w, h)
	}

	leftMax := max(pad, c.Left-pad-w)
	rightMin := max(pad, c.Right+pad)
	rightMax := max(rightMin, p.ViewportW-w-pad)
	leftRoom := max(0, leftMax-pad)
	rightRoom := max(0, rightMax-rightMin)

	var left int
	if leftRoom > rightRoom {
		left = randInt(rng, pad, leftMax)
	} else {
		left = randInt(rng, rightMin, rightMax)
	}
	return At(left, top, w, h)
}

// randInt returns a uniform integer in [lo, hi].
func randInt(rng Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
