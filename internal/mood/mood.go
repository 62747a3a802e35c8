package mood

import (
	"fmt"
	"strings"
	"time"
)

type Mood int

const (
	Happy Mood = iota
	Neutral
	Annoyed
	Pissed
)

// All lists the moods from calmest to angriest.
var All = []Mood{Happy, Neutral, Annoyed, Pissed}

var moodNames = map[Mood]string{
	Happy:   "happy",
	Neutral: "neutral",
	Annoyed: "annoyed",
	Pissed:  "pissed",
}

func (m Mood) String() string {
	if name, ok := moodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mood(%d)", int(m))
}

// Parse maps a config name back to a Mood.
func Parse(s string) (Mood, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range moodNames {
		if name == s {
			return m, true
		}
	}
	return Happy, false
}

const (
	// UrgencyFloor is the remaining time at or below which the bird is always pissed.
	UrgencyFloor = 5 * time.Minute

	neutralFrom = 0.33
	annoyedFrom = 0.66
)

// Derive maps the countdown to a mood tier. A completion makes the bird happy
// for the rest of the day; otherwise the urgency floor wins over progress.
func Derive(remaining time.Duration, progress float64, completedToday bool) Mood {
	switch {
	case completedToday:
		return Happy
	case remaining <= UrgencyFloor:
		return Pissed
	case progress < neutralFrom:
		return Happy
	case progress < annoyedFrom:
		return Neutral
	default:
		return Annoyed
	}
}

// ResolveAsset picks the sprite for a mood: the configured one when it exists,
// else the happy one, else fallback.
func ResolveAsset(m Mood, assets map[Mood]string, fallback string, exists func(string) bool) string {
	if exists == nil {
		exists = func(string) bool { return true }
	}
	for _, candidate := range []string{assets[m], assets[Happy]} {
		if candidate != "" && exists(candidate) {
			return candidate
		}
	}
	return fallback
}
