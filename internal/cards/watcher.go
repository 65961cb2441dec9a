package cards

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/spellduel/internal/game"
)

// WatcherConfig configures a catalog file watcher.
type WatcherConfig struct {
	// Path is the catalog file to watch.
	Path string

	// Debounce coalesces bursts of file events. Default: 250ms
	Debounce time.Duration

	// OnReload receives the cards of every successful reload.
	OnReload func([]game.Card)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher reloads a catalog file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload func([]game.Card)
	logger   *slog.Logger
	fs       *fsnotify.Watcher
}

// NewWatcher starts watching the directory of cfg.Path. Editors often
// replace files instead of writing them in place, so the directory is watched.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path cannot be empty")
	}
	if cfg.OnReload == nil {
		return nil, fmt.Errorf("reload callback cannot be nil")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 250 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch catalog directory: %w", err)
	}

	return &Watcher{
		path:     path,
		debounce: cfg.Debounce,
		onReload: cfg.OnReload,
		logger:   cfg.Logger.With("component", "catalog-watcher", "path", path),
		fs:       fsw,
	}, nil
}

// Run delivers reloads until ctx is cancelled, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cards, err := LoadCards(w.path)
	if err != nil {
		// Keep serving the previous catalog until the file is fixed.
		w.logger.Error("catalog reload failed", "error", err)
		return
	}
	w.logger.Info("catalog reloaded", "cards", len(cards))
	w.onReload(cards)
}
