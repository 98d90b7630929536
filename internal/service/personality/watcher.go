package personality

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sandevgo/annabot/pkg/log"
	"github.com/sandevgo/annabot/pkg/srv"
)

var _ srv.Service = (*Watcher)(nil)

// Watcher reloads a File whenever it changes on disk.
type Watcher struct {
	file     *File
	debounce time.Duration
	onReload func()

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewWatcher(file *File, debounce time.Duration, onReload func()) *Watcher {
	return &Watcher{file: file, debounce: debounce, onReload: onReload}
}

// Start watches the file's directory so editors that replace the file are seen too.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.file.Path())); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", w.file.Path(), err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.run(ctx, fw, w.done)
	return nil
}

func (w *Watcher) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	fw, done := w.watcher, w.done
	w.watcher = nil
	w.mu.Unlock()

	if fw == nil {
		return nil
	}
	err := fw.Close()
	<-done
	return err
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	logger := log.FromCtx(ctx)
	target := filepath.Clean(w.file.Path())

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("personality watcher error")
		case <-timer.C:
			if err := w.file.Load(ctx); err != nil {
				logger.Error().Err(err).Msg("failed to reload personality")
				continue
			}
			logger.Info().Str("agent", w.file.Personality().AgentName).Msg("personality reloaded")
			if w.onReload != nil {
				w.onReload()
			}
		}
	}
}
