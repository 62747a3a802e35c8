package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"birdie/internal/clock"
)

const (
	KeyDeadline         = "deadline"
	KeyStreak           = "streak"
	KeyLastCompletionAt = "last_completion_at"
	KeyUsedPrompts      = "used_prompts"
)

// State is the persisted nudger state. Zero times stand for "unset".
type State struct {
	Deadline         time.Time
	Streak           int
	LastCompletionAt time.Time
	UsedPrompts      []string
}

// StateStore encodes State onto a KV.
type StateStore struct {
	kv KV
}

func NewStateStore(kv KV) *StateStore {
	return &StateStore{kv: kv}
}

// Load reads the persisted state. Malformed values fall back to safe defaults;
// only backend read failures are returned, alongside whatever decoded cleanly.
func (s *StateStore) Load() (State, error) {
	var st State
	var errs []error

	raw, err := s.get(KeyDeadline)
	errs = append(errs, err)
	st.Deadline = clock.FromMillis(parsePositive(raw))

	raw, err = s.get(KeyStreak)
	errs = append(errs, err)
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n >= 0 {
		st.Streak = n
	}

	raw, err = s.get(KeyLastCompletionAt)
	errs = append(errs, err)
	st.LastCompletionAt = clock.FromMillis(parsePositive(raw))

	raw, err = s.get(KeyUsedPrompts)
	errs = append(errs, err)
	st.UsedPrompts = parseSet(raw)

	return st, errors.Join(errs...)
}

// SaveTimeline writes the keys owned by the streak machine.
func (s *StateStore) SaveTimeline(deadline time.Time, streak int, lastCompletionAt time.Time) error {
	lca := ""
	if !lastCompletionAt.IsZero() {
		lca = strconv.FormatInt(clock.Millis(lastCompletionAt), 10)
	}
	return errors.Join(
		s.set(KeyDeadline, strconv.FormatInt(clock.Millis(deadline), 10)),
		s.set(KeyStreak, strconv.Itoa(streak)),
		s.set(KeyLastCompletionAt, lca),
	)
}

// SaveUsedPrompts writes the prompt rotation's consumed set.
func (s *StateStore) SaveUsedPrompts(used []string) error {
	if used == nil {
		used = []string{}
	}
	data, err := json.Marshal(used)
	if err != nil {
		return err
	}
	return s.set(KeyUsedPrompts, string(data))
}

func (s *StateStore) get(key string) (string, error) {
	raw, err := s.kv.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return raw, nil
}

func (s *StateStore) set(key, value string) error {
	if err := s.kv.Set(key, value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func parsePositive(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func parseSet(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, p := range list {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
