package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"tabetl/internal/logging"
	"tabetl/internal/spec"
)

// Watcher reloads a pipeline file when it changes on disk and hands the
// new spec to a callback. Load failures are reported through onError and
// the previous spec stays in effect.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(spec.File)
	onError  func(error)
	fsw      *fsnotify.Watcher
}

func NewWatcher(path string, onChange func(spec.File), onError func(error)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors replace files, so watch the directory
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{
		path:     abs,
		debounce: 200 * time.Millisecond,
		onChange: onChange,
		onError:  onError,
		fsw:      fsw,
	}, nil
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logging.L().Debug("pipeline file changed", "path", ev.Name, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.L().Error("pipeline watcher error", "err", err)
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadPipelineSpec(w.path)
	if err != nil {
		logging.L().Error("pipeline reload failed", "path", w.path, "err", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	logging.L().Info("pipeline reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
