package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the on-disk preferences document
//
//	reduced_motion: true
//	hidden: false
type File struct {
	ReducedMotion bool `yaml:"reduced_motion"`
	Hidden        bool `yaml:"hidden"`
}

// ReadFile parses the preferences document at path, a missing file yields zero values
func ReadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read prefs file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse prefs file: %w", err)
	}
	return f, nil
}

// WriteFile stores f at path, creating parent directories
func WriteFile(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode prefs file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// FileWatcher keeps the reduced-motion and hidden flags in sync with a preferences file
// The parent directory is watched so editors that replace the file by rename are seen
type FileWatcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	path    string
	logger  *zap.Logger

	reducedMotion *Flag
	hidden        *Flag

	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewFileWatcher creates a watcher for path feeding the two flags
func NewFileWatcher(path string, reducedMotion, hidden *Flag, logger *zap.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &FileWatcher{
		watcher:       w,
		path:          filepath.Clean(path),
		logger:        logger,
		reducedMotion: reducedMotion,
		hidden:        hidden,
		debounceDur:   50 * time.Millisecond,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}, nil
}

// Reload reads the file once and applies it to the flags
func (fw *FileWatcher) Reload() error {
	f, err := ReadFile(fw.path)
	if err != nil {
		return err
	}
	fw.reducedMotion.Set(f.ReducedMotion)
	fw.hidden.Set(f.Hidden)
	return nil
}

// Start applies the current file and begins watching, it does not block
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.running {
		return nil
	}

	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if err := fw.Reload(); err != nil {
		fw.logger.Warn("initial prefs load failed", zap.String("path", fw.path), zap.Error(err))
	}

	fw.running = true
	go fw.run(ctx)
	return nil
}

// Stop ends the watch loop and releases the watcher, safe to call more than once
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	wasRunning := fw.running
	if wasRunning {
		fw.running = false
		close(fw.stopCh)
	}
	fw.mu.Unlock()

	if wasRunning {
		<-fw.doneCh
	}
	if err := fw.watcher.Close(); err != nil {
		fw.logger.Debug("close watcher", zap.Error(err))
	}
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	// Rapid saves collapse into one reload
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return

		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				pending = time.After(fw.debounceDur)
			}

		case <-pending:
			pending = nil
			if err := fw.Reload(); err != nil {
				fw.logger.Warn("prefs reload failed", zap.String("path", fw.path), zap.Error(err))
				continue
			}
			fw.logger.Debug("prefs reloaded",
				zap.Bool("reduced_motion", fw.reducedMotion.Active()),
				zap.Bool("hidden", fw.hidden.Active()))

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("prefs watcher error", zap.Error(err))
		}
	}
}
