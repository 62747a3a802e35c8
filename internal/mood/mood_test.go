package mood

import (
	"math/rand/v2"
	"testing"
	"time"
)

// scripted returns the queued values in order, then repeats the last one.
type scripted struct {
	vals []int
	i    int
}

func (s *scripted) IntN(n int) int {
	v := s.vals[len(s.vals)-1]
	if s.i < len(s.vals) {
		v = s.vals[s.i]
		s.i++
	}
	return v % n
}

func TestDeriveTiers(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		progress  float64
		completed bool
		want      Mood
	}{
		{"fresh day", 20 * time.Hour, 0.1, false, Happy},
		{"neutral lower edge", 16 * time.Hour, 0.33, false, Neutral},
		{"mid day", 12 * time.Hour, 0.5, false, Neutral},
		{"annoyed lower edge", 8 * time.Hour, 0.66, false, Annoyed},
		{"late", time.Hour, 0.95, false, Annoyed},
		{"urgency floor", 5 * time.Minute, 0.996, false, Pissed},
		{"floor beats progress", 3 * time.Minute, 0.1, false, Pissed},
		{"completed beats floor", time.Minute, 0.99, true, Happy},
		{"completed late", 2 * time.Hour, 0.9, true, Happy},
	}
	for _, tt := range tests {
		if got := Derive(tt.remaining, tt.progress, tt.completed); got != tt.want {
			t.Fatalf("%s: Derive = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseAndString(t *testing.T) {
	for _, m := range All {
		got, ok := Parse(m.String())
		if !ok || got != m {
			t.Fatalf("Parse(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := Parse("furious"); ok {
		t.Fatalf("expected unknown mood to fail")
	}
	if got := Mood(9).String(); got != "mood(9)" {
		t.Fatalf("unexpected String for unknown mood: %q", got)
	}
}

func TestPickCaptionAvoidsImmediateRepeat(t *testing.T) {
	e := NewEngine(map[Mood][]string{Neutral: {"a", "b", "c"}}, &scripted{vals: []int{0, 0, 0, 1}})
	if got := e.PickCaption(Neutral); got != "a" {
		t.Fatalf("first pick = %q, want a", got)
	}
	if got := e.PickCaption(Neutral); got != "b" {
		t.Fatalf("second pick = %q, want resample to b", got)
	}
}

func TestPickCaptionGivesUpAfterBoundedResamples(t *testing.T) {
	rng := &scripted{vals: []int{0}}
	e := NewEngine(map[Mood][]string{Pissed: {"x", "y"}}, rng)
	e.PickCaption(Pissed)
	rng.i = 0
	if got := e.PickCaption(Pissed); got != "x" {
		t.Fatalf("expected repeat accepted after resamples, got %q", got)
	}
}

func TestPickCaptionSingleEntryRepeats(t *testing.T) {
	e := NewEngine(map[Mood][]string{Annoyed: {"only"}}, rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 3; i++ {
		if got := e.PickCaption(Annoyed); got != "only" {
			t.Fatalf("pick %d = %q", i, got)
		}
	}
}

func TestPickCaptionFallsBackToHappy(t *testing.T) {
	e := NewEngine(map[Mood][]string{Happy: {"yay"}}, rand.New(rand.NewPCG(1, 2)))
	if got := e.PickCaption(Pissed); got != "yay" {
		t.Fatalf("expected happy fallback, got %q", got)
	}
	empty := NewEngine(nil, rand.New(rand.NewPCG(1, 2)))
	if got := empty.PickCaption(Neutral); got != "" {
		t.Fatalf("expected empty caption, got %q", got)
	}
}

func TestNoThreeInARow(t *testing.T) {
	e := NewEngine(map[Mood][]string{Happy: {"a", "b", "c"}}, rand.New(rand.NewPCG(42, 99)))
	prev, run := "", 0
	for i := 0; i < 5000; i++ {
		c := e.PickCaption(Happy)
		if c == prev {
			run++
		} else {
			run = 1
		}
		if run >= 3 {
			t.Fatalf("caption %q repeated three times at pick %d", c, i)
		}
		prev = c
	}
}

func TestApplyOnlyRefreshesOnChange(t *testing.T) {
	e := NewEngine(map[Mood][]string{
		Happy:   {"h1", "h2"},
		Neutral: {"n1", "n2"},
	}, rand.New(rand.NewPCG(3, 4)))

	first := e.Apply(Happy, false)
	if !first.Changed || !first.Reposition || first.Caption == "" {
		t.Fatalf("first apply should refresh, got %+v", first)
	}
	steady := e.Apply(Happy, false)
	if steady.Reposition || steady.Refreshed || steady.Caption != first.Caption {
		t.Fatalf("stable mood should not refresh, got %+v", steady)
	}
	forced := e.Apply(Happy, true)
	if !forced.Refreshed || !forced.Reposition || forced.Changed {
		t.Fatalf("forced apply should refresh without change, got %+v", forced)
	}
	next := e.Apply(Neutral, false)
	if !next.Changed || !next.Reposition {
		t.Fatalf("mood change should reposition, got %+v", next)
	}
	if m, ok := e.LastMood(); !ok || m != Neutral {
		t.Fatalf("LastMood = %v, %v", m, ok)
	}
	e.Reset()
	if _, ok := e.LastMood(); ok {
		t.Fatalf("expected no last mood after reset")
	}
	if again := e.Apply(Neutral, false); !again.Reposition {
		t.Fatalf("apply after reset should reposition, got %+v", again)
	}
}

func TestResolveAsset(t *testing.T) {
	assets := map[Mood]string{Happy: "happy", Pissed: "pissed"}
	have := map[string]bool{"happy": true}
	exists := func(name string) bool { return have[name] }

	if got := ResolveAsset(Happy, assets, "bird", exists); got != "happy" {
		t.Fatalf("expected primary asset, got %q", got)
	}
	if got := ResolveAsset(Pissed, assets, "bird", exists); got != "happy" {
		t.Fatalf("expected happy when pissed sprite missing, got %q", got)
	}
	have["happy"] = false
	if got := ResolveAsset(Neutral, assets, "bird", exists); got != "bird" {
		t.Fatalf("expected fallback asset, got %q", got)
	}
	if got := ResolveAsset(Pissed, assets, "bird", nil); got != "pissed" {
		t.Fatalf("nil exists should trust the mapping, got %q", got)
	}
}
