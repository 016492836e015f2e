package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Op describes what happened to a watched file.
type Op int

const (
	Modified Op = iota
	Created
	Removed
)

func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Removed:
		return "removed"
	default:
		return "modified"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Op   Op
}

// Config configures the watcher.
type Config struct {
	// Paths are files or directories to watch. Directories are scanned
	// recursively for files with one of Extensions.
	Paths []string

	// Extensions filters the files found in directories (default: tree
	// descriptions, .yaml .yml .json).
	Extensions []string

	// Interval is the polling interval (default: 200ms).
	Interval time.Duration
}

// DefaultExtensions are the extensions of tree description files.
var DefaultExtensions = []string{".yaml", ".yml", ".json"}

// Watcher polls files for changes. Changes found in one poll are
// delivered together.
type Watcher struct {
	config   Config
	onChange func([]Change)

	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	timestamps map[string]time.Time
}

// New creates a watcher.
func New(config Config) *Watcher {
	if config.Interval == 0 {
		config.Interval = 200 * time.Millisecond
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultExtensions
	}
	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called. The first scan records
// the current state and reports nothing.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.timestamps = w.scan()
	w.mu.Unlock()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.markStopped()
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			w.poll()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) markStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *Watcher) poll() {
	current := w.scan()

	w.mu.Lock()
	var changes []Change
	for p, mod := range current {
		last, ok := w.timestamps[p]
		switch {
		case !ok:
			changes = append(changes, Change{Path: p, Op: Created})
		case mod.After(last):
			changes = append(changes, Change{Path: p, Op: Modified})
		}
	}
	for p := range w.timestamps {
		if _, ok := current[p]; !ok {
			changes = append(changes, Change{Path: p, Op: Removed})
		}
	}
	w.timestamps = current
	callback := w.onChange
	w.mu.Unlock()

	if len(changes) > 0 && callback != nil {
		callback(changes)
	}
}

// scan returns the modification time of every watched file.
func (w *Watcher) scan() map[string]time.Time {
	found := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		info, err := os.Stat(root)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			found[root] = info.ModTime()
			continue
		}
		filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.matches(p) {
				return nil
			}
			if fi, err := d.Info(); err == nil {
				found[p] = fi.ModTime()
			}
			return nil
		})
	}
	return found
}

func (w *Watcher) matches(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range w.config.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
