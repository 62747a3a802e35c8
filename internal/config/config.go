package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "birdie.db"
	DefaultDiskvDir       = "state"
	DefaultLogName        = "birdie.log"
	EnvConfigPath         = "BIRDIE_CONFIG"
)

type Keymap struct {
	Quit       string `toml:"quit"`
	Prompt     string `toml:"prompt"`
	Done       string `toml:"done"`
	Another    string `toml:"another"`
	Cancel     string `toml:"cancel"`
	Reposition string `toml:"reposition"`
}

type Config struct {
	StoreBackend  string              `toml:"store_backend"`
	DBPath        string              `toml:"db_path"`
	DiskvDir      string              `toml:"diskv_dir"`
	LogPath       string              `toml:"log_path"`
	LogLevel      string              `toml:"log_level"`
	TickInterval  string              `toml:"tick_interval"`
	Celebrate     string              `toml:"celebrate"`
	Padding       int                 `toml:"padding"`
	HaloBase      int                 `toml:"halo_base"`
	HaloMin       int                 `toml:"halo_min"`
	HaloScale     float64             `toml:"halo_scale"`
	FallbackAsset string              `toml:"fallback_asset"`
	Assets        map[string]string   `toml:"assets"`
	Captions      map[string][]string `toml:"captions"`
	Prompts       []string            `toml:"prompts"`
	Keys          Keymap              `toml:"keys"`
}

// ResolveConfigPath returns $BIRDIE_CONFIG when set, else config.toml under
// the user config directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "birdie", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	dir := filepath.Dir(path)
	cfg := defaultConfig(dir)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(data, dir)
}

// Parse decodes TOML over the defaults and back-fills anything left empty.
// Relative paths are resolved against dir.
func Parse(data []byte, dir string) (Config, error) {
	cfg := defaultConfig(dir)
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.fill(dir)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values that would break the tick loop.
func (c Config) Validate() error {
	if _, err := time.ParseDuration(c.TickInterval); err != nil {
		return fmt.Errorf("tick_interval: %w", err)
	}
	if d, _ := time.ParseDuration(c.TickInterval); d <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %q", c.TickInterval)
	}
	if _, err := time.ParseDuration(c.Celebrate); err != nil {
		return fmt.Errorf("celebrate: %w", err)
	}
	if c.Padding < 0 || c.HaloBase < 0 || c.HaloMin < 0 || c.HaloScale < 0 {
		return errors.New("padding and halo values must not be negative")
	}
	return nil
}

// Tick returns the tick interval.
func (c Config) Tick() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// CelebrateFor returns how long the completion celebration lasts.
func (c Config) CelebrateFor() time.Duration {
	d, err := time.ParseDuration(c.Celebrate)
	if err != nil || d < 0 {
		return 3400 * time.Millisecond
	}
	return d
}

func (c *Config) fill(dir string) {
	def := defaultConfig(dir)
	if c.StoreBackend == "" {
		c.StoreBackend = def.StoreBackend
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.DiskvDir == "" {
		c.DiskvDir = def.DiskvDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.TickInterval == "" {
		c.TickInterval = def.TickInterval
	}
	if c.Celebrate == "" {
		c.Celebrate = def.Celebrate
	}
	if c.FallbackAsset == "" {
		c.FallbackAsset = def.FallbackAsset
	}
	if len(c.Prompts) == 0 {
		c.Prompts = def.Prompts
	}
	if len(c.Captions) == 0 {
		c.Captions = def.Captions
	}
	if len(c.Assets) == 0 {
		c.Assets = def.Assets
	}
	c.DBPath = resolve(dir, c.DBPath)
	c.DiskvDir = resolve(dir, c.DiskvDir)
	if c.LogPath != "" {
		c.LogPath = resolve(dir, c.LogPath)
	}
	c.Keys.fill(def.Keys)
}

func (k *Keymap) fill(def Keymap) {
	set := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	set(&k.Quit, def.Quit)
	set(&k.Prompt, def.Prompt)
	set(&k.Done, def.Done)
	set(&k.Another, def.Another)
	set(&k.Cancel, def.Cancel)
	set(&k.Reposition, def.Reposition)
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(dir, p)
}

func defaultConfig(dir string) Config {
	return Config{
		StoreBackend:  "sqlite",
		DBPath:        filepath.Join(dir, DefaultDBName),
		DiskvDir:      filepath.Join(dir, DefaultDiskvDir),
		LogPath:       filepath.Join(dir, DefaultLogName),
		LogLevel:      "info",
		TickInterval:  "1s",
		Celebrate:     "3.4s",
		Padding:       1,
		HaloBase:      2,
		HaloMin:       1,
		HaloScale:     0.18,
		FallbackAsset: "bird",
		Assets: map[string]string{
			"happy":   "bird_happy",
			"neutral": "bird_neutral",
			"annoyed": "bird_annoyed",
			"pissed":  "bird_pissed",
		},
		Captions: defaultCaptions(),
		Prompts:  defaultPrompts(),
		Keys: Keymap{
			Quit:       "q",
			Prompt:     "p",
			Done:       "ctrl+s",
			Another:    "ctrl+n",
			Cancel:     "esc",
			Reposition: "r",
		},
	}
}

func defaultCaptions() map[string][]string {
	return map[string][]string{
		"happy": {
			"Birdie is radiating joy... finally someone did their job",
			"Feathers fluffed and fabulous",
			"Birdie forgives all your past laziness",
			"Smiles? Achieved. Validation? Received.",
			"Oh look who remembered Birdie exists!",
			"Mission accomplished. Birb believes in you again",
		},
		"neutral": {
			"Birdie is... existing.",
			"No chaos, no thrill. Just mild existence",
			"Steady wings, dead inside (just kidding... maybe)",
			"Today's vibe: floating through consequences",
			"Birdie neither hates nor loves you right now",
			"Just here. Being bird-shaped.",
		},
		"annoyed": {
			"Birdie is side-eyeing you from the perch",
			"Still waiting... totally fine... no resentment at all",
			"He's starting to think you ghosted him",
			"Talons tapping, feathers ruffled, patience fading",
			"You promised you'd do it. Birdie remembers.",
			"Birdie swears you're doing this on purpose.",
		},
		"pissed": {
			"Birdie is sure that you hate him",
			"Oh great. Another day of betrayal",
			"He's rewriting his will and you're not in it.",
			"ANGER LEVEL: cartoon steam noises",
			"Birdie's feathers are literally on fire",
			"If Birdie had middle fingers, they'd be up right now.",
		},
	}
}

func defaultPrompts() []string {
	return []string{
		"What made you smile today?",
		"Describe a small win you had today.",
		"What challenged you today, and how did you react?",
		"Name three things you are grateful for right now.",
		"What is one lesson you learned today?",
		"How did you take care of yourself today?",
		"What's something you're looking forward to tomorrow?",
		"Write about a kind act you noticed or did.",
		"What would have made today 1% better?",
		"Describe a moment of calm you experienced today.",
		"What is a thought you want to let go of?",
		"Who helped you today and how?",
		"If today had a headline, what would it be?",
		"What is one thing you created today?",
		"What surprised you today?",
	}
}
