package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// LogWatcher calls OnChange when the classification log is written, so open
// history views pick up entries from other dashboard instances.
type LogWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewLogWatcher watches the directory holding path. Events for path and its
// SQLite side files (-wal, -journal) are reported.
func NewLogWatcher(path string, onChange func(), logger *zap.Logger) (*LogWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &LogWatcher{
		watcher:  w,
		path:     abs,
		debounce: 200 * time.Millisecond,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in the background.
func (lw *LogWatcher) Start(ctx context.Context) error {
	lw.mu.Lock()
	if lw.running {
		lw.mu.Unlock()
		return nil
	}
	lw.running = true
	lw.mu.Unlock()

	dir := filepath.Dir(lw.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		lw.logger.Warn("log watcher: create dir", zap.String("dir", dir), zap.Error(err))
	}
	if err := lw.watcher.Add(dir); err != nil {
		return err
	}
	go lw.run(ctx)
	return nil
}

// Stop ends the watch and releases the notifier.
func (lw *LogWatcher) Stop() {
	lw.mu.Lock()
	if !lw.running {
		lw.mu.Unlock()
		_ = lw.watcher.Close()
		return
	}
	lw.running = false
	lw.mu.Unlock()

	close(lw.stopCh)
	<-lw.doneCh
	if err := lw.watcher.Close(); err != nil {
		lw.logger.Warn("log watcher: close", zap.Error(err))
	}
}

func (lw *LogWatcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}
	return abs == lw.path || strings.HasPrefix(abs, lw.path+"-")
}

func (lw *LogWatcher) run(ctx context.Context) {
	defer close(lw.doneCh)
	timer := time.NewTimer(lw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-lw.stopCh:
			return
		case ev, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			if !lw.matches(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(lw.debounce)
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			lw.logger.Warn("log watcher error", zap.Error(err))
		case <-timer.C:
			if lw.onChange != nil {
				lw.onChange()
			}
		}
	}
}
