package nudge

import (
	"fmt"

	"birdie/internal/config"
	"birdie/internal/logging"
	"birdie/internal/mood"
	"birdie/internal/prompts"
	"birdie/internal/storage"
	"birdie/internal/streak"
)

// Open loads persisted state from kv and assembles a Nudger configured by cfg.
// Malformed stored values fall back to defaults; an unreadable backend is an error.
func Open(cfg config.Config, kv storage.KV, rng Rand, render Renderer, geom Geometry, logger *logging.Logger) (*Nudger, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	store := storage.NewStateStore(kv)
	st, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	logger.Infof("state loaded: streak=%d deadline=%v used_prompts=%d", st.Streak, st.Deadline, len(st.UsedPrompts))

	machine := streak.New(st, store, logger)
	moods := mood.NewEngine(Captions(cfg, logger), rng)
	rotation := prompts.NewRotation(cfg.Prompts, st.UsedPrompts, rng, store, logger)
	return New(machine, moods, rotation, rng, OptionsFromConfig(cfg, logger), render, geom, logger), nil
}

// OptionsFromConfig maps config fields onto placement and asset options.
func OptionsFromConfig(cfg config.Config, logger *logging.Logger) Options {
	assets := make(map[mood.Mood]string, len(cfg.Assets))
	for name, asset := range cfg.Assets {
		m, ok := mood.Parse(name)
		if !ok {
			logger.Warnf("ignoring asset for unknown mood %q", name)
			continue
		}
		assets[m] = asset
	}
	return Options{
		Padding:       cfg.Padding,
		HaloBase:      cfg.HaloBase,
		HaloMin:       cfg.HaloMin,
		HaloScale:     cfg.HaloScale,
		Assets:        assets,
		FallbackAsset: cfg.FallbackAsset,
	}
}

// Captions keys the configured caption lists by mood.
func Captions(cfg config.Config, logger *logging.Logger) map[mood.Mood][]string {
	out := make(map[mood.Mood][]string, len(cfg.Captions))
	for name, list := range cfg.Captions {
		m, ok := mood.Parse(name)
		if !ok {
			logger.Warnf("ignoring captions for unknown mood %q", name)
			continue
		}
		out[m] = list
	}
	return out
}

// Apply reloads captions, prompts and options from cfg.
func (n *Nudger) Apply(cfg config.Config) {
	opts := OptionsFromConfig(cfg, n.logger)
	opts.AssetExists = n.opts.AssetExists
	n.Reload(Captions(cfg, n.logger), cfg.Prompts, opts)
}

// SetAssetExists installs the check used to fall back from missing sprites.
func (n *Nudger) SetAssetExists(fn func(string) bool) {
	n.opts.AssetExists = fn
}
