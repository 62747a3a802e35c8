package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"birdie/internal/clock"
	"birdie/internal/config"
	"birdie/internal/logging"
	"birdie/internal/nudge"
	"birdie/internal/scheduler"
	"birdie/internal/storage"
	"birdie/internal/streak"
	"birdie/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(clock.System{}).ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	configPath string
	backend    string
	logLevel   string
	clock      clock.Clock
}

func newRootCmd(clk clock.Clock) *cobra.Command {
	opts := &options{clock: clk}

	root := &cobra.Command{
		Use:           "birdie",
		Short:         "A bird that sulks until you journal today",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.ResolveConfigPath(), "path to config.toml")
	root.PersistentFlags().StringVar(&opts.backend, "store", "", "state backend override (sqlite or diskv)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newCompleteCmd(opts))
	root.AddCommand(newPromptCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	return root
}

// app is everything a command needs once config and state are loaded.
type app struct {
	cfg    config.Config
	kv     storage.KV
	logger *logging.Logger
	nudger *nudge.Nudger
}

func loadApp(opts *options, render nudge.Renderer, geom nudge.Geometry) (*app, error) {
	cfg, err := config.LoadOrCreate(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.backend != "" {
		cfg.StoreBackend = opts.backend
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	logger, err := logging.Open(cfg.LogPath, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return nil, err
	}
	kv, err := storage.OpenBackend(cfg.StoreBackend, cfg.DBPath, cfg.DiskvDir)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x62697264))
	n, err := nudge.Open(cfg, kv, rng, render, geom, logger)
	if err != nil {
		kv.Close()
		logger.Close()
		return nil, err
	}
	logger.Infof("birdie started with %s store", cfg.StoreBackend)
	return &app{cfg: cfg, kv: kv, logger: logger, nudger: n}, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.logger.Warnf("close store: %v", err)
	}
	a.logger.Close()
}

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the birdie terminal UI (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
}

func runTUI(ctx context.Context, opts *options) error {
	scr := ui.NewScreen()
	a, err := loadApp(opts, scr, scr)
	if err != nil {
		return err
	}
	defer a.Close()
	a.nudger.SetAssetExists(ui.HasSprite)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	updates := watchConfig(ctx, opts.configPath, a.logger)
	return ui.Run(ui.NewModel(a.cfg, a.nudger, scr, opts.clock, updates, a.logger))
}

func watchConfig(ctx context.Context, path string, logger *logging.Logger) <-chan config.Config {
	updates, err := config.Watch(ctx, path, logger)
	if err != nil {
		logger.Warnf("config hot reload disabled: %v", err)
		return nil
	}
	return updates
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print streak, deadline, remaining time and mood",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts, nil, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			now := opts.clock.Now()
			f := a.nudger.Start(now)
			printStatus(cmd.OutOrStdout(), a.nudger.Machine(), f)
			return a.nudger.Machine().PersistErr()
		},
	}
}

func printStatus(w io.Writer, m *streak.Machine, f nudge.Frame) {
	done := "no"
	if f.CompletedToday {
		done = "yes"
	}
	fmt.Fprintf(w, "streak     %d\n", m.Streak())
	fmt.Fprintf(w, "deadline   %s\n", m.Deadline().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(w, "remaining  %02d:%02d:%02d\n", f.Remaining.Hours, f.Remaining.Minutes, f.Remaining.Seconds)
	fmt.Fprintf(w, "mood       %s\n", f.Mood)
	fmt.Fprintf(w, "done today %s\n", done)
}

func newCompleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Record today's journaling and extend the streak",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts, nil, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			n := a.nudger
			now := opts.clock.Now()
			n.Start(now)
			err = n.Complete(now)
			if errors.Is(err, streak.ErrAlreadyCompleted) {
				fmt.Fprintf(cmd.OutOrStdout(), "already done today, streak %d\n", n.Machine().Streak())
				return nil
			}
			if err != nil {
				return err
			}
			if err := n.Machine().PersistErr(); err != nil {
				return fmt.Errorf("completion not saved: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "streak %d, see you tomorrow\n", n.Machine().Streak())
			return nil
		},
	}
}

func newPromptCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the next journaling prompt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts, nil, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			prompt := a.nudger.NextPrompt()
			if prompt == "" {
				return errors.New("no prompts configured")
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return nil
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	var noReload bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the countdown every tick until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts, nil, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()
			n := a.nudger
			n.Start(opts.clock.Now())
			tick := func(time.Time) {
				f := n.Tick(opts.clock.Now())
				fmt.Fprintf(out, "\r%02d:%02d:%02d  %-8s streak %d ", f.Remaining.Hours, f.Remaining.Minutes, f.Remaining.Seconds, f.Mood, n.Machine().Streak())
			}
			defer fmt.Fprintln(out)

			ctx := cmd.Context()
			var updates <-chan config.Config
			if !noReload {
				updates = watchConfig(ctx, opts.configPath, a.logger)
			}
			if updates == nil {
				scheduler.Run(ctx, a.cfg.Tick(), tick)
				return nil
			}
			rep := scheduler.NewRepeater(a.cfg.Tick())
			rep.Restart(ctx, tick)
			for {
				select {
				case <-ctx.Done():
					rep.Stop()
					return nil
				case cfg, ok := <-updates:
					if !ok {
						rep.Wait()
						return nil
					}
					// The nudger is single-owner; stop the loop before touching it.
					rep.Stop()
					n.Apply(cfg)
					a.logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
					rep = scheduler.NewRepeater(cfg.Tick())
					rep.Restart(ctx, tick)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "do not watch the config file for changes")
	return cmd
}
