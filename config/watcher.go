package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a configuration file when it changes on disk and hands
// every successfully parsed version to a callback. Parse or validation
// failures keep the previous configuration and are logged.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(Config)

	fw *fsnotify.Watcher

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Watch loads the file once, then starts watching it. onChange is called
// with the initial configuration and after every valid reload.
func Watch(path string, logger *slog.Logger, onChange func(Config)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	// Watch the directory, not the file: editors and config mounts replace
	// the file, which would orphan a file-level watch.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		path:     path,
		debounce: 200 * time.Millisecond,
		logger:   logger,
		onChange: onChange,
		fw:       fw,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	onChange(cfg)
	go w.loop()
	return w, nil
}

// Stop halts the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		<-w.done
		w.fw.Close()
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-w.stop:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: editors fire several events per save.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("config reload failed, keeping previous configuration",
			"path", w.path,
			"error", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path)
	w.onChange(cfg)
}
