package mood

// Rand is the random source the engine samples captions with.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

const captionResamples = 8

// Change describes what Apply decided.
type Change struct {
	Mood    Mood
	Caption string
	// Changed is set when the mood differs from the previous one.
	Changed bool
	// Reposition asks the placement collaborator to move the floating element.
	Reposition bool
	// Refreshed is set when a new caption was picked.
	Refreshed bool
}

// Engine tracks the last mood and caption so stable moods do not churn the display.
type Engine struct {
	captions    map[Mood][]string
	rng         Rand
	lastMood    Mood
	hasLast     bool
	lastCaption string
}

func NewEngine(captions map[Mood][]string, rng Rand) *Engine {
	e := &Engine{rng: rng}
	e.SetCaptions(captions)
	return e
}

// SetCaptions replaces the caption lists, keeping the last mood and caption.
func (e *Engine) SetCaptions(captions map[Mood][]string) {
	cp := make(map[Mood][]string, len(captions))
	for m, list := range captions {
		cp[m] = append([]string(nil), list...)
	}
	e.captions = cp
}

// LastMood returns the previous mood, ok=false before the first Apply or after Reset.
func (e *Engine) LastMood() (Mood, bool) {
	return e.lastMood, e.hasLast
}

func (e *Engine) LastCaption() string {
	return e.lastCaption
}

// Reset forgets the last mood so the next Apply picks a caption and repositions.
func (e *Engine) Reset() {
	e.hasLast = false
}

// PickCaption draws a caption for m, resampling a bounded number of times to
// avoid repeating the previous caption.
func (e *Engine) PickCaption(m Mood) string {
	list := e.captions[m]
	if len(list) == 0 {
		list = e.captions[Happy]
	}
	if len(list) == 0 {
		e.lastCaption = ""
		return ""
	}
	caption := list[e.rng.IntN(len(list))]
	if len(list) > 1 {
		for i := 0; i < captionResamples && caption == e.lastCaption; i++ {
			caption = list[e.rng.IntN(len(list))]
		}
	}
	e.lastCaption = caption
	return caption
}

// Apply records m as the current mood. A new caption and a reposition are
// requested only on an actual mood change or when force is set.
func (e *Engine) Apply(m Mood, force bool) Change {
	changed := !e.hasLast || e.lastMood != m
	ch := Change{Mood: m, Caption: e.lastCaption, Changed: changed}
	if force || changed {
		ch.Caption = e.PickCaption(m)
		ch.Refreshed = true
		ch.Reposition = true
	}
	e.lastMood = m
	e.hasLast = true
	return ch
}
