package repository

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/callisto/pkg/archive"
)

// ArchiveWatcher watches an archive root for changes to .har files and
// reports the affected interaction names. Long-running replay processes use
// it to drop cached interactions when archives are edited, re-recorded or
// pulled in from a shared repository.
//
// Events are debounced so that an editor save or a git checkout touching
// many archives produces a single notification.
type ArchiveWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   WatcherConfig
	debounce *debouncer

	mu      sync.Mutex
	pending map[string]struct{}
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherConfig configures an ArchiveWatcher.
type WatcherConfig struct {
	// Root is the archive root directory to watch, including
	// subdirectories created later.
	Root string

	// DebounceInterval is the quiet period required before changes are
	// reported (default: 200ms).
	DebounceInterval time.Duration
}

// DefaultWatcherConfig returns the default watcher configuration for the
// given archive root.
func DefaultWatcherConfig(root string) WatcherConfig {
	return WatcherConfig{
		Root:             root,
		DebounceInterval: 200 * time.Millisecond,
	}
}

// NewArchiveWatcher creates a watcher for the configured archive root.
func NewArchiveWatcher(config WatcherConfig, logger *slog.Logger) (*ArchiveWatcher, error) {
	if config.Root == "" {
		return nil, fmt.Errorf("watch root cannot be empty")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	aw := &ArchiveWatcher{
		watcher: watcher,
		logger:  logger.With("component", "repository.watcher"),
		config:  config,
		pending: make(map[string]struct{}),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	return aw, nil
}

// Watch starts watching and invokes onChange with the sorted interaction
// names affected by each debounced batch of file events. It blocks until the
// stop channel is closed via Stop or the events channel fails.
func (aw *ArchiveWatcher) Watch(onChange func(names []string)) error {
	aw.mu.Lock()
	if aw.running {
		aw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	aw.running = true
	aw.mu.Unlock()

	defer func() {
		aw.mu.Lock()
		aw.running = false
		aw.mu.Unlock()
		close(aw.doneCh)
	}()

	aw.debounce = newDebouncer(aw.config.DebounceInterval, func() {
		names := aw.drain()
		if len(names) == 0 {
			return
		}
		aw.logger.Info("archives changed", "interactions", names)
		onChange(names)
	})

	if err := aw.addTree(aw.config.Root); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	aw.logger.Info("archive watcher started",
		"root", aw.config.Root,
		"debounce_ms", aw.config.DebounceInterval.Milliseconds())

	for {
		select {
		case <-aw.stopCh:
			aw.logger.Info("archive watcher stopped")
			return nil

		case event, ok := <-aw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// New interaction directories must be added while running;
			// fsnotify does not watch recursively. The whole subtree is
			// walked because MkdirAll can create nested directories
			// between the event and this add.
			if event.Op.Has(fsnotify.Create) {
				if ok, _ := isDirectory(event.Name); ok {
					if err := aw.addTree(event.Name); err != nil {
						aw.logger.Error("failed to watch new directory",
							"path", event.Name, "error", err)
					}
					continue
				}
			}

			if !aw.shouldProcessEvent(event) {
				continue
			}

			aw.logger.Debug("archive event",
				"path", event.Name,
				"op", event.Op.String())

			aw.record(event.Name)
			aw.debounce.trigger()

		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			aw.logger.Error("archive watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for Watch to return.
func (aw *ArchiveWatcher) Stop() error {
	aw.mu.Lock()
	if !aw.running {
		aw.mu.Unlock()
		return nil
	}
	aw.mu.Unlock()

	close(aw.stopCh)
	<-aw.doneCh

	if aw.debounce != nil {
		aw.debounce.stop()
	}

	if err := aw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// record remembers the interaction names affected by a changed archive path.
func (aw *ArchiveWatcher) record(path string) {
	names := interactionNames(path)

	aw.mu.Lock()
	defer aw.mu.Unlock()
	for _, name := range names {
		aw.pending[name] = struct{}{}
	}
}

// drain returns and clears the pending interaction names, sorted.
func (aw *ArchiveWatcher) drain() []string {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if len(aw.pending) == 0 {
		return nil
	}
	names := make([]string, 0, len(aw.pending))
	for name := range aw.pending {
		names = append(names, name)
	}
	aw.pending = make(map[string]struct{})
	sort.Strings(names)
	return names
}

// interactionNames resolves the interaction names held by the archive at
// path. The exact names live inside the archive (directory names are
// sanitized and lossy), so the file is decoded when it still exists; for
// deleted or unreadable archives the sanitized file name is the best
// available answer.
func interactionNames(path string) []string {
	data, err := os.ReadFile(path)
	if err == nil {
		if a, err := archive.Decode(data); err == nil {
			var names []string
			for _, page := range a.Log.Pages {
				if page.ID != "" {
					names = append(names, page.ID)
				}
			}
			if len(names) > 0 {
				return names
			}
		}
	}
	return []string{strings.TrimSuffix(filepath.Base(path), archiveExt)}
}

// addTree adds root and all its subdirectories to the watcher.
func (aw *ArchiveWatcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if err := aw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
			aw.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}

// shouldProcessEvent reports whether an event concerns an archive file.
func (aw *ArchiveWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if !strings.EqualFold(filepath.Ext(event.Name), archiveExt) {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return true
}

// debouncer collapses rapid event bursts into a single flush after a quiet
// period.
type debouncer struct {
	interval time.Duration
	flush    func()

	mu     sync.Mutex
	timer  *time.Timer
	stopCh chan struct{}
}

func newDebouncer(interval time.Duration, flush func()) *debouncer {
	return &debouncer{
		interval: interval,
		flush:    flush,
		stopCh:   make(chan struct{}),
	}
}

// trigger restarts the quiet-period timer. The flush callback runs once the
// interval elapses with no further triggers.
func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
		default:
			d.flush()
		}
	})
}

// stop cancels any pending flush.
func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
