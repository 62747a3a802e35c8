package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"birdie/internal/logging"
)

const debounceWindow = 250 * time.Millisecond

// Watch emits a freshly parsed Config each time the file at path changes.
// Bursts of events are debounced; files that fail to parse are logged and
// skipped. The channel closes when ctx is done.
func Watch(ctx context.Context, path string, logger *logging.Logger) (<-chan Config, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	target = filepath.Clean(target)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan Config, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		var (
			timer   *time.Timer
			timerCh <-chan time.Time
		)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounceWindow)
					timerCh = timer.C
				} else {
					if !timer.Stop() {
						<-timerCh
					}
					timer.Reset(debounceWindow)
				}
			case <-timerCh:
				timer = nil
				timerCh = nil
				data, err := os.ReadFile(target)
				if err != nil {
					logger.Warnf("reload config: %v", err)
					continue
				}
				cfg, err := Parse(data, filepath.Dir(target))
				if err != nil {
					logger.Warnf("reload config: %v", err)
					continue
				}
				logger.Infof("config reloaded from %s", target)
				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("config watcher error: %v", err)
			}
		}
	}()
	return out, nil
}
