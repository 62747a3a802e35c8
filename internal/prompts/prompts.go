package prompts

import "birdie/internal/logging"

// Rand is the random source used to choose among unused prompts.
type Rand interface {
	IntN(n int) int
}

// Saver persists the consumed set. *storage.StateStore implements it.
type Saver interface {
	SaveUsedPrompts(used []string) error
}

// Rotation hands out journaling prompts without repeats until every prompt
// has been shown once since the last full cycle.
type Rotation struct {
	prompts []string
	used    map[string]struct{}
	order   []string

	rng    Rand
	saver  Saver
	logger *logging.Logger
}

func NewRotation(prompts, used []string, rng Rand, saver Saver, logger *logging.Logger) *Rotation {
	if logger == nil {
		logger = logging.Discard()
	}
	r := &Rotation{rng: rng, saver: saver, logger: logger, used: map[string]struct{}{}}
	r.SetPrompts(prompts)
	for _, p := range used {
		r.markUsed(p)
	}
	return r
}

// SetPrompts swaps the prompt list. Used entries no longer listed stay in the
// set but are ignored when choosing.
func (r *Rotation) SetPrompts(prompts []string) {
	r.prompts = append([]string(nil), prompts...)
}

// Used returns the consumed prompts in the order they were shown.
func (r *Rotation) Used() []string {
	return append([]string(nil), r.order...)
}

// Next returns an unused prompt and records it as used. When the list is
// exhausted the used set is cleared and the draw retried once.
func (r *Rotation) Next() string {
	return r.next(true)
}

func (r *Rotation) next(retry bool) string {
	available := make([]string, 0, len(r.prompts))
	for _, p := range r.prompts {
		if _, ok := r.used[p]; !ok {
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		if !retry || len(r.prompts) == 0 {
			return ""
		}
		r.logger.Debugf("prompt cycle complete, clearing %d used prompts", len(r.order))
		r.used = map[string]struct{}{}
		r.order = nil
		r.persist()
		return r.next(false)
	}
	prompt := available[r.rng.IntN(len(available))]
	r.markUsed(prompt)
	r.persist()
	return prompt
}

func (r *Rotation) markUsed(p string) {
	if _, ok := r.used[p]; ok {
		return
	}
	r.used[p] = struct{}{}
	r.order = append(r.order, p)
}

func (r *Rotation) persist() {
	if r.saver == nil {
		return
	}
	if err := r.saver.SaveUsedPrompts(r.Used()); err != nil {
		r.logger.Warnf("persist used prompts: %v", err)
	}
}
